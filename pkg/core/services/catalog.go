package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

// DefaultCatalog is the report page: two rolling spans that no calendar report
// duplicates, then each granularity's current and previous period.
func DefaultCatalog() []domain.ReportRequest {
	return []domain.ReportRequest{
		domain.Rolling(5*60, "5 minutes"),
		domain.Rolling(24*60*60, "24 hours"),
		domain.Fixed(domain.Hour, 0, "this hour"),
		domain.Fixed(domain.Hour, 1, "the previous hour"),
		domain.Fixed(domain.Day, 0, "today"),
		domain.Fixed(domain.Day, 1, "yesterday"),
		domain.Fixed(domain.Week, 0, "this week"),
		domain.Fixed(domain.Week, 1, "last week"),
		domain.Fixed(domain.Month, 0, "this month"),
		domain.Fixed(domain.Month, 1, "last month"),
		domain.Fixed(domain.Year, 0, "this year"),
		domain.Fixed(domain.Year, 1, "last year"),
	}
}

// RollingCatalog lists every rolling span, including those that overlap a
// calendar report.
func RollingCatalog() []domain.ReportRequest {
	const day = 24 * 60 * 60
	return []domain.ReportRequest{
		domain.Rolling(5*60, "5 minutes"),
		domain.Rolling(30*60, "30 minutes"),
		domain.Rolling(60*60, "hour"),
		domain.Rolling(day, "24 hours"),
		domain.Rolling(7*day, "week"),
		domain.Rolling(30*day, "month"),
		domain.Rolling(180*day, "6 months"),
		domain.Rolling(365*day, "year"),
	}
}

func describeRolling(req domain.ReportRequest) string {
	name := req.Label
	if name == "" {
		name = humanizeSeconds(req.Seconds)
	}
	return "the last " + name
}

func describeFixed(req domain.ReportRequest, w domain.TimeWindow, soFar bool) string {
	if req.Granularity == domain.All || !isCalendar(req.Granularity) {
		if req.Label != "" {
			return req.Label
		}
		return "all time"
	}

	name := req.Label
	if name == "" {
		name = periodName(req.Granularity, req.PeriodsAgo)
	}

	desc := fmt.Sprintf("%s (%s)", name, periodSpan(req.Granularity, w))
	if soFar {
		desc += " (so far)"
	}
	return desc
}

func isCalendar(g domain.Granularity) bool {
	switch g {
	case domain.Hour, domain.Day, domain.Week, domain.Month, domain.Year:
		return true
	}
	return false
}

func periodName(g domain.Granularity, periodsAgo int) string {
	switch periodsAgo {
	case 0:
		if g == domain.Day {
			return "today"
		}
		return "this " + string(g)
	case 1:
		switch g {
		case domain.Day:
			return "yesterday"
		case domain.Hour:
			return "the previous hour"
		}
		return "last " + string(g)
	}
	if periodsAgo < 0 {
		return fmt.Sprintf("%d %ss ahead", -periodsAgo, g)
	}
	return fmt.Sprintf("%d %ss ago", periodsAgo, g)
}

func periodSpan(g domain.Granularity, w domain.TimeWindow) string {
	switch g {
	case domain.Hour:
		return fmt.Sprintf("%s, %s to %s", longDate(w.From), w.From.Format("3pm"), w.From.Add(time.Hour).Format("3pm"))
	case domain.Day:
		return longDate(w.From)
	case domain.Week:
		return "beginning " + longDate(w.From)
	case domain.Month:
		return w.From.Format("January 2006")
	default:
		return w.From.Format("2006")
	}
}

// longDate formats t as "2nd January 2006".
func longDate(t time.Time) string {
	return ordinal(t.Day()) + " " + t.Format("January 2006")
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		suffix = "st"
	case 2:
		suffix = "nd"
	case 3:
		suffix = "rd"
	}
	if n%100 >= 11 && n%100 <= 13 {
		suffix = "th"
	}
	return strconv.Itoa(n) + suffix
}

func humanizeSeconds(seconds int) string {
	units := []struct {
		size int
		name string
	}{
		{24 * 60 * 60, "day"},
		{60 * 60, "hour"},
		{60, "minute"},
	}
	for _, u := range units {
		if seconds >= u.size && seconds%u.size == 0 {
			return plural(seconds/u.size, u.name)
		}
	}
	return plural(seconds, "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
