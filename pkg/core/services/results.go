package services

import (
	"regexp"
	"sort"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

// DefaultRowLimit is used whenever a caller supplies a non-positive row limit.
const DefaultRowLimit = 10

// Ranking is the ordered outcome of one aggregation.
type Ranking struct {
	Entries          []domain.RankedEntry
	TotalClicks      int64
	UsedDefaultLimit bool
}

// Empty reports whether no clicks fell inside the window. It is not an error.
func (r Ranking) Empty() bool {
	return len(r.Entries) == 0
}

// normalizeLimit substitutes fallback (or DefaultRowLimit) for a
// non-positive limit and reports whether it did so.
func normalizeLimit(rowLimit, fallback int) (int, bool) {
	if fallback < 1 {
		fallback = DefaultRowLimit
	}
	if rowLimit < 1 {
		return fallback, true
	}
	return rowLimit, false
}

// rank drops excluded destinations, orders by clicks descending then short
// code ascending and keeps at most limit rows.
func rank(entries []domain.RankedEntry, limit int, exclude *regexp.Regexp) []domain.RankedEntry {
	kept := make([]domain.RankedEntry, 0, len(entries))
	for _, e := range entries {
		if exclude != nil && exclude.MatchString(e.OriginalURL) {
			continue
		}
		kept = append(kept, e)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Clicks != kept[j].Clicks {
			return kept[i].Clicks > kept[j].Clicks
		}
		return kept[i].ShortCode < kept[j].ShortCode
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}

func totalClicks(entries []domain.RankedEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Clicks
	}
	return total
}
