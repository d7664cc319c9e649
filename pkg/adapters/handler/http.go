package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
	logger  zerolog.Logger
}

func NewHTTPHandler(service ports.LinkService, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
	CustomCode  string `json:"custom_code,omitempty"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	link, err := h.service.Shorten(r.Context(), req.OriginalURL, req.Title, req.CustomCode)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info().
		Str("admin", userEmail(r.Context())).
		Int64("link_id", link.ID).
		Str("short_code", link.ShortCode).
		Msg("link created")
	writeJSON(w, http.StatusCreated, link)
}

// Redirect to original URL and record the click
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("short_code")
	if code == "" {
		http.Error(w, "Short code missing", http.StatusBadRequest)
		return
	}

	originalURL, err := h.service.GetOriginalURL(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			http.Error(w, "Link not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("short_code", code).Msg("lookup failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Recorded after the response, so request values are copied first.
	if r.URL.Query().Get("no_stat") == "" {
		referer := r.Header.Get("Referer")
		userAgent := r.UserAgent()
		ip := clientIP(r)
		country := strings.ToUpper(r.Header.Get("CF-IPCountry"))
		go func() {
			if err := h.service.RecordClick(context.Background(), code, referer, userAgent, ip, country); err != nil {
				h.logger.Error().Err(err).Str("short_code", code).Msg("record click failed")
			}
		}()
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteLink(r.Context(), id); err != nil {
		writeError(w, h.logger.With().Int64("link_id", id).Logger(), err)
		return
	}

	h.logger.Info().Str("admin", userEmail(r.Context())).Int64("link_id", id).Msg("link deleted")
	w.WriteHeader(http.StatusNoContent)
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to client statuses. Anything else is logged
// and answered with a generic 500 so store details stay server-side.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrCodeExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrInvalidLookback):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Msg("request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
