package handler

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

// Services bundles what the router dispatches to.
type Services struct {
	Links   ports.LinkService
	Reports ports.ReportService
	Catalog CatalogSource
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger zerolog.Logger) http.Handler {
	h := NewHTTPHandler(svc.Links, logger)
	rh := NewReportHandler(svc.Reports, svc.Catalog, logger)
	mw := NewMiddleware(cfg, logger)
	authHandler := NewAuthHandler(cfg, logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /open/{short_code}", h.Redirect)
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics)
	}

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	protectedMux.HandleFunc("GET /api/v1/reports", rh.Catalog)
	protectedMux.HandleFunc("GET /api/v1/reports/fixed", rh.Fixed)
	protectedMux.HandleFunc("GET /api/v1/reports/rolling", rh.Rolling)
	protectedMux.HandleFunc("GET /api/v1/clicks", rh.RecentClicks)

	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return mw.RequestLogger(mux)
}
