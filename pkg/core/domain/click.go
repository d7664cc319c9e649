package domain

import "time"

// ClickTimeLayout is the wall-clock layout click times are stored and compared in.
const ClickTimeLayout = "2006-01-02 15:04:05"

// ClickEvent is a single redirect through a short link. Timestamp is
// offset-adjusted wall time.
type ClickEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	ShortCode   string    `json:"short_code"`
	Referrer    string    `json:"referrer"`
	UserAgent   string    `json:"user_agent"`
	ClientIP    string    `json:"client_ip"`
	CountryCode string    `json:"country_code,omitempty"`
}

// ClickLogEntry is a click joined with the link it landed on.
type ClickLogEntry struct {
	ClickEvent
	OriginalURL string `json:"original_url"`
	Title       string `json:"title"`
}

// ClickQuery bounds a grouped count over the click log.
// From is inclusive. To is inclusive; a zero To means no upper bound.
// A Limit of zero or less returns every group.
type ClickQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Rolling reports whether the query has no upper bound.
func (q ClickQuery) Rolling() bool {
	return q.To.IsZero()
}
