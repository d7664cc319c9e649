package config

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Reports []domain.ReportRequest `yaml:"reports"`
}

// LoadCatalog reads a report catalog from a YAML file of the form
//
//	reports:
//	  - label: 24 hours
//	    kind: rolling
//	    seconds: 86400
//	  - label: yesterday
//	    kind: fixed
//	    granularity: day
//	    periods_ago: 1
//	    limit: 20
func LoadCatalog(path string) ([]domain.ReportRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for i, r := range file.Reports {
		switch r.Kind {
		case domain.RollingReport:
			if r.Seconds < 1 {
				return nil, fmt.Errorf("catalog report %d (%q): rolling report needs positive seconds", i, r.Label)
			}
		case domain.FixedReport, "":
			file.Reports[i].Kind = domain.FixedReport
			if r.Kind == "" && r.Seconds > 0 {
				file.Reports[i].Kind = domain.RollingReport
			}
		default:
			return nil, fmt.Errorf("catalog report %d (%q): unknown kind %q", i, r.Label, r.Kind)
		}
	}
	return file.Reports, nil
}

// CatalogHolder serves the current report catalog and reloads it when the
// file changes or the process receives SIGHUP. A catalog that fails to load
// leaves the previous one in place.
type CatalogHolder struct {
	mu      sync.RWMutex
	catalog []domain.ReportRequest
	path    string
	logger  zerolog.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	stop    sync.Once
}

// NewCatalogHolder returns a holder for path. An empty path serves fallback
// and never reloads.
func NewCatalogHolder(path string, fallback []domain.ReportRequest, logger zerolog.Logger) (*CatalogHolder, error) {
	h := &CatalogHolder{
		catalog: fallback,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	if path == "" {
		return h, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	h.path = absPath

	catalog, err := LoadCatalog(absPath)
	if err != nil {
		return nil, err
	}
	h.catalog = catalog
	return h, nil
}

// Get returns the current catalog.
func (h *CatalogHolder) Get() []domain.ReportRequest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.catalog
}

// Reload re-reads the catalog file.
func (h *CatalogHolder) Reload() error {
	if h.path == "" {
		return nil
	}

	catalog, err := LoadCatalog(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str("path", h.path).Msg("catalog reload failed, keeping old catalog")
		return err
	}

	h.mu.Lock()
	old := len(h.catalog)
	h.catalog = catalog
	h.mu.Unlock()

	h.logger.Info().Int("old", old).Int("new", len(catalog)).Msg("report catalog reloaded")
	return nil
}

// Watch reloads on file changes and SIGHUP until Stop is called.
func (h *CatalogHolder) Watch() error {
	if h.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory; editors replace files on save.
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.watcher = watcher

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go h.watchLoop(sigCh)

	h.logger.Info().Str("path", h.path).Msg("watching report catalog")
	return nil
}

// Stop ends watching.
func (h *CatalogHolder) Stop() {
	h.stop.Do(func() {
		close(h.stopCh)
		if h.watcher != nil {
			h.watcher.Close()
		}
	})
}

func (h *CatalogHolder) watchLoop(sigCh chan os.Signal) {
	defer signal.Stop(sigCh)
	filename := filepath.Base(h.path)

	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				_ = h.Reload()
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Msg("catalog watcher error")

		case <-sigCh:
			h.logger.Info().Msg("received SIGHUP, reloading report catalog")
			_ = h.Reload()

		case <-h.stopCh:
			return
		}
	}
}
