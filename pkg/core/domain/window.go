package domain

import "time"

// Granularity is the calendar unit of a fixed report window.
type Granularity string

const (
	Hour  Granularity = "hour"
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
	All   Granularity = "all"
)

// Granularities lists every recognised granularity, finest first.
func Granularities() []Granularity {
	return []Granularity{Hour, Day, Week, Month, Year, All}
}

// TimeWindow is a pair of click-time bounds. From never exceeds To.
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t lies within the window, both ends inclusive.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// IsOpen reports whether the window still extends past now, i.e. the
// period is only complete "so far".
func (w TimeWindow) IsOpen(now time.Time) bool {
	return w.To.After(now)
}

// Query converts the window into a bounded click query.
func (w TimeWindow) Query(limit int) ClickQuery {
	return ClickQuery{From: w.From, To: w.To, Limit: limit}
}
