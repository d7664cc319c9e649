// Package bootstrap wires storage, services and HTTP routing from a Config.
// The server, the CLI and the serverless entry point all start here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/cache"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/clock"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/metrics"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/repository/postgres"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/services"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

// Store is a click log that can be written, read and closed.
type Store interface {
	ports.LinkRepository
	ports.ClickEventStore
	Close() error
}

// App holds the wired application.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   Store
	Metrics *metrics.Collector
	Catalog *config.CatalogHolder
	Links   *services.LinkService
	Reports *services.ReportService

	redis *redis.Client
}

// Options overrides parts of the wiring, mostly for tests.
type Options struct {
	Clock ports.Clock
}

// New opens the store selected by cfg.DatabaseURL and builds the services.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	a := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	store, err := OpenStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.Store = store

	var reads ports.ClickEventStore = store
	var links ports.LinkRepository = store
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// Reports still work without the cache.
			logger.Warn().Err(err).Msg("report cache disabled")
		} else {
			a.redis = client
			rc := cache.NewReportCache(client, store, clk, cfg.Offset(), cfg.ReportCacheTTL, logger).WithLookups(a.Metrics)
			reads, links = rc, rc.Links(store)
			logger.Info().Dur("ttl", cfg.ReportCacheTTL).Msg("report cache enabled")
		}
	}

	a.Catalog, err = config.NewCatalogHolder(cfg.CatalogFile, services.DefaultCatalog(), logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("report catalog: %w", err)
	}

	a.Reports, err = services.NewReportService(reads, clk, a.Metrics, logger, services.ReportOptions{
		Offset:          cfg.Offset(),
		DefaultRowLimit: cfg.DefaultRowLimit,
		ExcludePattern:  cfg.ExcludePattern,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Links = services.NewLinkService(links, clk, a.Metrics, logger, cfg.Offset())
	return a, nil
}

// OpenStore picks PostgreSQL for postgres:// URLs and SQLite or libSQL otherwise.
func OpenStore(ctx context.Context, dbURL string) (Store, error) {
	if postgres.IsPostgresURL(dbURL) {
		return postgres.NewPostgresRepository(ctx, dbURL)
	}
	return sqlite.NewSQLiteRepository(dbURL)
}

// Handler returns the HTTP router for the app.
func (a *App) Handler() http.Handler {
	return handler.NewRouter(a.Config, handler.Services{
		Links:   a.Links,
		Reports: a.Reports,
		Catalog: a.Catalog,
		Metrics: a.Metrics.Handler(),
	}, a.Logger)
}

// Close releases the store, the cache client and the catalog watcher.
func (a *App) Close() error {
	var errs []error
	if a.Catalog != nil {
		a.Catalog.Stop()
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
