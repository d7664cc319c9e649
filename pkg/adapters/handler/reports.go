package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/window"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

// CatalogSource supplies the reports evaluated by the catalog endpoint.
type CatalogSource interface {
	Get() []domain.ReportRequest
}

type ReportHandler struct {
	service ports.ReportService
	catalog CatalogSource
	logger  zerolog.Logger
}

func NewReportHandler(service ports.ReportService, catalog CatalogSource, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{service: service, catalog: catalog, logger: logger}
}

// Catalog evaluates every configured report against a single instant.
func (h *ReportHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	result := h.service.RunCatalog(r.Context(), h.catalog.Get())
	writeJSON(w, http.StatusOK, result)
}

// Fixed reports one calendar period.
func (h *ReportHandler) Fixed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	g := domain.All
	if raw := q.Get("granularity"); raw != "" {
		parsed, ok := window.ParseGranularity(raw)
		if !ok {
			http.Error(w, "unknown granularity "+strconv.Quote(raw), http.StatusBadRequest)
			return
		}
		g = parsed
	}

	ago := 0
	if raw := q.Get("ago"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid ago", http.StatusBadRequest)
			return
		}
		ago = n
	}

	var anchor time.Time
	if raw := q.Get("at"); raw != "" {
		t, err := parseAnchor(raw)
		if err != nil {
			http.Error(w, "Invalid at", http.StatusBadRequest)
			return
		}
		anchor = t
	}

	res, err := h.service.Fixed(r.Context(), g, ago, anchor, rowLimit(r))
	if err != nil {
		writeError(w, h.logger.With().Str("report", "fixed").Str("granularity", string(g)).Int("ago", ago).Logger(), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Rolling reports the last n seconds.
func (h *ReportHandler) Rolling(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
	if err != nil {
		http.Error(w, "Invalid seconds", http.StatusBadRequest)
		return
	}

	res, err := h.service.Rolling(r.Context(), seconds, rowLimit(r))
	if err != nil {
		writeError(w, h.logger.With().Str("report", "rolling").Int("seconds", seconds).Logger(), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RecentClicks lists the latest clicks, newest first.
func (h *ReportHandler) RecentClicks(w http.ResponseWriter, r *http.Request) {
	clicks, usedDefault, err := h.service.RecentClicks(r.Context(), rowLimit(r))
	if err != nil {
		writeError(w, h.logger.With().Str("report", "clicks").Logger(), err)
		return
	}

	resp := map[string]interface{}{
		"data":               clicks,
		"used_default_limit": usedDefault,
	}
	writeJSON(w, http.StatusOK, resp)
}

// rowLimit reads the limit parameter. Anything unparsable counts as absent.
func rowLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return limit
}

func parseAnchor(raw string) (time.Time, error) {
	if t, err := time.Parse(domain.ClickTimeLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
