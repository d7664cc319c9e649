// Package window turns a granularity and an anchor instant into the click-time
// bounds of a calendar period.
//
// Every function works on wall-clock time that has already been shifted by the
// configured UTC offset, so callers must not apply the offset again. Periods are
// computed with time.Date normalisation rather than formatted strings; a week
// always starts on Monday.
package window

import (
	"math"
	"time"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

var (
	// Epoch is the lower bound of the unbounded window.
	Epoch = time.Unix(0, 0).UTC()
	// Ceiling is the upper bound of the unbounded window: the last second a
	// signed 32-bit Unix timestamp can hold (2038-01-19 03:14:07 UTC).
	Ceiling = time.Unix(math.MaxInt32, 0).UTC()
)

// ParseGranularity reports whether s names a granularity. Resolve itself never
// rejects a granularity; use this for strict validation.
func ParseGranularity(s string) (domain.Granularity, bool) {
	for _, g := range domain.Granularities() {
		if string(g) == s {
			return g, true
		}
	}
	return domain.All, false
}

// Resolve returns the window of the period periodsAgo periods before the one
// containing now. periodsAgo 0 is the current period, whose upper bound is the
// end of the period even though it has not elapsed yet. An unrecognised
// granularity resolves to the unbounded window.
func Resolve(now time.Time, g domain.Granularity, periodsAgo int) domain.TimeWindow {
	switch g {
	case domain.Hour, domain.Day, domain.Week, domain.Month, domain.Year:
	default:
		return domain.TimeWindow{From: Epoch, To: Ceiling}
	}

	from := AddPeriods(StartOf(now, g), g, -periodsAgo)
	return domain.TimeWindow{From: from, To: EndOf(from, g)}
}

// StartOf returns the first instant of the period containing t.
func StartOf(t time.Time, g domain.Granularity) time.Time {
	y, m, d := t.Date()
	loc := t.Location()

	switch g {
	case domain.Hour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case domain.Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case domain.Week:
		return time.Date(y, m, d-daysSinceMonday(t), 0, 0, 0, 0, loc)
	case domain.Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case domain.Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return Epoch
	}
}

// EndOf returns the last whole second of the period containing t.
func EndOf(t time.Time, g domain.Granularity) time.Time {
	start := StartOf(t, g)
	y, m, d := start.Date()
	loc := start.Location()

	switch g {
	case domain.Hour:
		return time.Date(y, m, d, start.Hour(), 59, 59, 0, loc)
	case domain.Day:
		return time.Date(y, m, d, 23, 59, 59, 0, loc)
	case domain.Week:
		return time.Date(y, m, d+6, 23, 59, 59, 0, loc)
	case domain.Month:
		return time.Date(y, m, DaysIn(y, m), 23, 59, 59, 0, loc)
	case domain.Year:
		return time.Date(y, time.December, 31, 23, 59, 59, 0, loc)
	default:
		return Ceiling
	}
}

// AddPeriods moves t by n whole periods. Months and years are added to the
// day-of-month unchanged, so t should be a period start when n crosses months
// of different lengths.
func AddPeriods(t time.Time, g domain.Granularity, n int) time.Time {
	switch g {
	case domain.Hour:
		y, m, d := t.Date()
		return time.Date(y, m, d, t.Hour()+n, t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	case domain.Day:
		return t.AddDate(0, 0, n)
	case domain.Week:
		return t.AddDate(0, 0, 7*n)
	case domain.Month:
		return t.AddDate(0, n, 0)
	case domain.Year:
		return t.AddDate(n, 0, 0)
	default:
		return t
	}
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysSinceMonday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
