package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

// LinkRepository defines storage operations for links and the click log
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	GetByShortCode(ctx context.Context, code string) (*domain.Link, error)
	Delete(ctx context.Context, id int64) error // Soft delete
	RecordClick(ctx context.Context, click *domain.ClickEvent) error
}

// ClickEventStore is the read side of the click log used by reports.
//
// CountClicks returns, for every click of a live link inside the query bounds,
// the count per short code with the link's destination and title, ordered by
// count descending then short code ascending and limited to q.Limit rows.
type ClickEventStore interface {
	CountClicks(ctx context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error)
	RecentClicks(ctx context.Context, limit int) ([]domain.ClickLogEntry, error)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ReportMetrics receives report and click observations.
type ReportMetrics interface {
	ObserveReport(kind domain.ReportKind, outcome string, elapsed time.Duration)
	ClickRecorded()
}

// LinkService defines the host-side link operations
type LinkService interface {
	Shorten(ctx context.Context, originalURL, title, customCode string) (*domain.Link, error)
	GetOriginalURL(ctx context.Context, code string) (string, error)
	DeleteLink(ctx context.Context, id int64) error
	RecordClick(ctx context.Context, shortCode, referrer, userAgent, ip, country string) error
}

// ReportService defines the popularity reports
type ReportService interface {
	Rolling(ctx context.Context, seconds, rowLimit int) (domain.ReportResult, error)
	Fixed(ctx context.Context, g domain.Granularity, periodsAgo int, anchor time.Time, rowLimit int) (domain.ReportResult, error)
	RunCatalog(ctx context.Context, catalog []domain.ReportRequest) domain.CatalogResult
	RecentClicks(ctx context.Context, rowLimit int) ([]domain.ClickLogEntry, bool, error)
}
