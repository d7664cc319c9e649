package domain

import "time"

// RankedEntry is one row of a popularity report.
type RankedEntry struct {
	ShortCode   string `json:"short_code"`
	Clicks      int64  `json:"clicks"`
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
}

// ReportKind distinguishes rolling from calendar-aligned reports.
type ReportKind string

const (
	RollingReport ReportKind = "rolling"
	FixedReport   ReportKind = "fixed"
)

// ReportRequest describes a single report of the catalog.
type ReportRequest struct {
	Kind  ReportKind `json:"kind" yaml:"kind"`
	Label string     `json:"label" yaml:"label"`

	// Rolling reports
	Seconds int `json:"seconds,omitempty" yaml:"seconds,omitempty"`

	// Fixed reports
	Granularity Granularity `json:"granularity,omitempty" yaml:"granularity,omitempty"`
	PeriodsAgo  int         `json:"periods_ago,omitempty" yaml:"periods_ago,omitempty"`
	Anchor      time.Time   `json:"anchor,omitempty" yaml:"anchor,omitempty"`

	RowLimit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// Rolling returns a request for the clicks of the last n seconds.
func Rolling(seconds int, label string) ReportRequest {
	return ReportRequest{Kind: RollingReport, Seconds: seconds, Label: label}
}

// Fixed returns a request for a calendar period, periodsAgo periods back.
func Fixed(g Granularity, periodsAgo int, label string) ReportRequest {
	return ReportRequest{Kind: FixedReport, Granularity: g, PeriodsAgo: periodsAgo, Label: label}
}

// ReportResult is what a renderer receives for one report.
type ReportResult struct {
	Request          ReportRequest `json:"request"`
	Description      string        `json:"description"`
	Window           TimeWindow    `json:"window"`
	SoFar            bool          `json:"so_far"`
	Entries          []RankedEntry `json:"entries"`
	TotalClicks      int64         `json:"total_clicks"`
	UsedDefaultLimit bool          `json:"used_default_limit"`
	NoResults        bool          `json:"no_results"`
	Error            string        `json:"error,omitempty"`
}

// Failed reports whether the store could not answer this report.
func (r ReportResult) Failed() bool {
	return r.Error != ""
}

// CatalogResult is one evaluation of the whole catalog against a single
// captured instant.
type CatalogResult struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Reports     []ReportResult `json:"reports"`
}
