package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/window"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

// ReportOptions carries the report configuration.
type ReportOptions struct {
	// Offset is added once to the clock to obtain the wall time clicks are stored in.
	Offset          time.Duration
	DefaultRowLimit int
	// ExcludePattern is a regular expression matched against destination URLs.
	ExcludePattern string
}

type ReportService struct {
	store   ports.ClickEventStore
	clock   ports.Clock
	metrics ports.ReportMetrics
	logger  zerolog.Logger
	offset  time.Duration
	agg     AggregateOptions
}

func NewReportService(store ports.ClickEventStore, clock ports.Clock, metrics ports.ReportMetrics, logger zerolog.Logger, opts ReportOptions) (*ReportService, error) {
	var exclude *regexp.Regexp
	if opts.ExcludePattern != "" {
		re, err := regexp.Compile(opts.ExcludePattern)
		if err != nil {
			return nil, fmt.Errorf("link exclude pattern: %w", err)
		}
		exclude = re
	}

	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &ReportService{
		store:   store,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		offset:  opts.Offset,
		agg: AggregateOptions{
			DefaultLimit: opts.DefaultRowLimit,
			Exclude:      exclude,
		},
	}, nil
}

// Now returns the current offset-adjusted wall time.
func (s *ReportService) Now() time.Time {
	return s.clock.Now().UTC().Add(s.offset)
}

// Rolling reports the clicks of the last seconds seconds.
func (s *ReportService) Rolling(ctx context.Context, seconds, rowLimit int) (domain.ReportResult, error) {
	req := domain.Rolling(seconds, "")
	req.RowLimit = rowLimit
	return s.Run(ctx, s.Now(), req)
}

// Fixed reports the clicks of one calendar period. A zero anchor means now.
func (s *ReportService) Fixed(ctx context.Context, g domain.Granularity, periodsAgo int, anchor time.Time, rowLimit int) (domain.ReportResult, error) {
	req := domain.Fixed(g, periodsAgo, "")
	req.Anchor = anchor
	req.RowLimit = rowLimit
	return s.Run(ctx, s.Now(), req)
}

// Run evaluates a single report against the given adjusted instant.
func (s *ReportService) Run(ctx context.Context, now time.Time, req domain.ReportRequest) (domain.ReportResult, error) {
	return s.run(ctx, s.logger, now, req)
}

// RunCatalog evaluates every request against one captured instant. A failing
// report is recorded in its result and does not stop the others.
func (s *ReportService) RunCatalog(ctx context.Context, catalog []domain.ReportRequest) domain.CatalogResult {
	result := domain.CatalogResult{
		ID:          uuid.NewString(),
		GeneratedAt: s.Now(),
		Reports:     make([]domain.ReportResult, 0, len(catalog)),
	}
	logger := s.logger.With().Str("evaluation", result.ID).Logger()

	for _, req := range catalog {
		res, err := s.run(ctx, logger, result.GeneratedAt, req)
		if err != nil {
			logger.Error().Err(err).Str("report", res.Description).Msg("report failed")
			res.Error = err.Error()
		}
		result.Reports = append(result.Reports, res)
	}

	logger.Info().Int("reports", len(result.Reports)).Msg("catalog evaluated")
	return result
}

// RecentClicks returns the latest clicks, newest first.
func (s *ReportService) RecentClicks(ctx context.Context, rowLimit int) ([]domain.ClickLogEntry, bool, error) {
	limit, usedDefault := normalizeLimit(rowLimit, s.agg.DefaultLimit)
	clicks, err := s.store.RecentClicks(ctx, limit)
	if err != nil {
		return nil, usedDefault, fmt.Errorf("recent clicks: %w", err)
	}
	return clicks, usedDefault, nil
}

func (s *ReportService) run(ctx context.Context, logger zerolog.Logger, now time.Time, req domain.ReportRequest) (domain.ReportResult, error) {
	start := time.Now()
	kind := kindOf(req)
	res := domain.ReportResult{Request: req}

	var q domain.ClickQuery
	switch kind {
	case domain.RollingReport:
		res.Window = domain.TimeWindow{From: now.Add(-time.Duration(req.Seconds) * time.Second), To: now}
		res.Description = describeRolling(req)
		if req.Seconds < 1 {
			s.metrics.ObserveReport(kind, "error", time.Since(start))
			return res, domain.ErrInvalidLookback
		}
		q = domain.ClickQuery{From: res.Window.From}
	default:
		anchor := now
		if !req.Anchor.IsZero() {
			anchor = req.Anchor
		}
		res.Window = window.Resolve(anchor, req.Granularity, req.PeriodsAgo)
		res.SoFar = res.Window.IsOpen(now)
		res.Description = describeFixed(req, res.Window, res.SoFar)
		q = res.Window.Query(0)
	}

	ranking, err := Aggregate(ctx, s.store, q, req.RowLimit, s.agg)
	if err != nil {
		s.metrics.ObserveReport(kind, "error", time.Since(start))
		return res, err
	}

	res.Entries = ranking.Entries
	res.TotalClicks = ranking.TotalClicks
	res.UsedDefaultLimit = ranking.UsedDefaultLimit
	res.NoResults = ranking.Empty()

	outcome := "ok"
	if res.NoResults {
		outcome = "empty"
	}
	s.metrics.ObserveReport(kind, outcome, time.Since(start))

	logger.Debug().
		Str("report", res.Description).
		Time("from", res.Window.From).
		Time("to", res.Window.To).
		Int("rows", len(res.Entries)).
		Msg("report evaluated")

	return res, nil
}

func kindOf(req domain.ReportRequest) domain.ReportKind {
	if req.Kind == domain.RollingReport || (req.Kind == "" && req.Seconds > 0) {
		return domain.RollingReport
	}
	return domain.FixedReport
}

type nopMetrics struct{}

func (nopMetrics) ObserveReport(domain.ReportKind, string, time.Duration) {}
func (nopMetrics) ClickRecorded()                                         {}
