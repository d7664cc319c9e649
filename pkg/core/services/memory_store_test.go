package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

// memoryStore is an in-process click log honouring the ClickEventStore and
// LinkRepository contracts.
type memoryStore struct {
	mu     sync.Mutex
	links  map[string]*domain.Link
	clicks []domain.ClickEvent
	nextID int64

	err     error
	queries []domain.ClickQuery
}

func newMemoryStore() *memoryStore {
	return &memoryStore{links: map[string]*domain.Link{}}
}

func (m *memoryStore) addLink(code, url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.links[code] = &domain.Link{ID: m.nextID, ShortCode: code, OriginalURL: url, Title: "Title " + code}
}

func (m *memoryStore) addClicks(code string, times ...time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range times {
		m.clicks = append(m.clicks, domain.ClickEvent{Timestamp: t, ShortCode: code})
	}
}

func (m *memoryStore) Create(_ context.Context, link *domain.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ShortCode]; ok {
		return domain.ErrCodeExists
	}
	m.nextID++
	link.ID = m.nextID
	stored := *link
	m.links[link.ShortCode] = &stored
	return nil
}

func (m *memoryStore) GetByShortCode(_ context.Context, code string) (*domain.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.links[code]
	if !ok || l.DeletedAt != nil {
		return nil, nil
	}
	found := *l
	return &found, nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.links {
		if l.ID == id {
			now := time.Now()
			l.DeletedAt = &now
		}
	}
	return nil
}

func (m *memoryStore) RecordClick(_ context.Context, click *domain.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, *click)
	return nil
}

func (m *memoryStore) CountClicks(_ context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}

	counts := map[string]int64{}
	for _, c := range m.clicks {
		l, ok := m.links[c.ShortCode]
		if !ok || l.DeletedAt != nil {
			continue
		}
		if c.Timestamp.Before(q.From) || (!q.Rolling() && c.Timestamp.After(q.To)) {
			continue
		}
		counts[c.ShortCode]++
	}

	entries := []domain.RankedEntry{}
	for code, n := range counts {
		l := m.links[code]
		entries = append(entries, domain.RankedEntry{ShortCode: code, Clicks: n, OriginalURL: l.OriginalURL, Title: l.Title})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Clicks != entries[j].Clicks {
			return entries[i].Clicks > entries[j].Clicks
		}
		return entries[i].ShortCode < entries[j].ShortCode
	})
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return entries, nil
}

func (m *memoryStore) RecentClicks(_ context.Context, limit int) ([]domain.ClickLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	var out []domain.ClickLogEntry
	for i := len(m.clicks) - 1; i >= 0 && len(out) < limit; i-- {
		c := m.clicks[i]
		l, ok := m.links[c.ShortCode]
		if !ok {
			continue
		}
		out = append(out, domain.ClickLogEntry{ClickEvent: c, OriginalURL: l.OriginalURL, Title: l.Title})
	}
	return out, nil
}

// failingStore fails only for queries matching fail.
type failingStore struct {
	*memoryStore
	fail func(domain.ClickQuery) bool
	err  error
}

func (f *failingStore) CountClicks(ctx context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error) {
	if f.fail(q) {
		return nil, f.err
	}
	return f.memoryStore.CountClicks(ctx, q)
}
