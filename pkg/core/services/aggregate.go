package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	// DefaultLimit replaces non-positive row limits. Zero means DefaultRowLimit.
	DefaultLimit int
	// Exclude drops links whose destination matches. Nil keeps everything.
	Exclude *regexp.Regexp
}

// Aggregate counts the clicks per link inside q's bounds and returns them
// ranked by count descending, ties broken by short code ascending, truncated to
// rowLimit. q.Limit is ignored. An empty window yields an empty Ranking and a
// nil error; only a store failure is returned as an error.
func Aggregate(ctx context.Context, store ports.ClickEventStore, q domain.ClickQuery, rowLimit int, opts AggregateOptions) (Ranking, error) {
	limit, usedDefault := normalizeLimit(rowLimit, opts.DefaultLimit)

	q.Limit = limit
	if opts.Exclude != nil {
		// Exclusions must be applied before truncation.
		q.Limit = 0
	}

	rows, err := store.CountClicks(ctx, q)
	if err != nil {
		return Ranking{}, fmt.Errorf("count clicks: %w", err)
	}

	entries := rank(rows, limit, opts.Exclude)
	return Ranking{
		Entries:          entries,
		TotalClicks:      totalClicks(entries),
		UsedDefaultLimit: usedDefault,
	}, nil
}
