package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 31: "31st",
	}
	for n, want := range tests {
		assert.Equal(t, want, ordinal(n))
	}
}

func TestPeriodName(t *testing.T) {
	assert.Equal(t, "this hour", periodName(domain.Hour, 0))
	assert.Equal(t, "the previous hour", periodName(domain.Hour, 1))
	assert.Equal(t, "today", periodName(domain.Day, 0))
	assert.Equal(t, "yesterday", periodName(domain.Day, 1))
	assert.Equal(t, "last month", periodName(domain.Month, 1))
	assert.Equal(t, "4 weeks ago", periodName(domain.Week, 4))
	assert.Equal(t, "2 years ahead", periodName(domain.Year, -2))
}

func TestDefaultCatalogShape(t *testing.T) {
	catalog := DefaultCatalog()
	assert.Len(t, catalog, 12)

	rolling := 0
	fixed := map[domain.Granularity][]int{}
	for _, req := range catalog {
		switch req.Kind {
		case domain.RollingReport:
			rolling++
		case domain.FixedReport:
			fixed[req.Granularity] = append(fixed[req.Granularity], req.PeriodsAgo)
		}
	}
	assert.Equal(t, 2, rolling)
	for _, g := range []domain.Granularity{domain.Hour, domain.Day, domain.Week, domain.Month, domain.Year} {
		assert.Equal(t, []int{0, 1}, fixed[g], string(g))
	}

	assert.Len(t, RollingCatalog(), 8)
}

func TestRank(t *testing.T) {
	entries := []domain.RankedEntry{
		{ShortCode: "b", Clicks: 2},
		{ShortCode: "a", Clicks: 2},
		{ShortCode: "c", Clicks: 9},
	}
	got := rank(entries, 2, nil)
	assert.Equal(t, []domain.RankedEntry{{ShortCode: "c", Clicks: 9}, {ShortCode: "a", Clicks: 2}}, got)
	assert.Equal(t, int64(11), totalClicks(got))

	limit, usedDefault := normalizeLimit(0, 0)
	assert.Equal(t, DefaultRowLimit, limit)
	assert.True(t, usedDefault)
}
