// Package cache keeps the rankings of fully elapsed report windows in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

const (
	keyPrefix = "popular-clicks:v1"
	// generationKey is bumped whenever a link is deleted. Every cached
	// ranking is keyed by the generation it was computed under.
	generationKey = keyPrefix + ":generation"
)

// Client is the subset of the go-redis client the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// LookupRecorder counts cache hits, misses and errors.
type LookupRecorder interface {
	CacheLookup(result string)
}

// ReportCache is a read-through ClickEventStore. Only bounded queries whose
// upper bound is already in the past are cached; open and rolling windows
// still change and always reach the underlying store.
type ReportCache struct {
	client  Client
	next    ports.ClickEventStore
	clock   ports.Clock
	offset  time.Duration
	ttl     time.Duration
	logger  zerolog.Logger
	lookups LookupRecorder
}

func NewReportCache(client Client, next ports.ClickEventStore, clock ports.Clock, offset, ttl time.Duration, logger zerolog.Logger) *ReportCache {
	return &ReportCache{
		client:  client,
		next:    next,
		clock:   clock,
		offset:  offset,
		ttl:     ttl,
		logger:  logger,
		lookups: nopRecorder{},
	}
}

// NewRedisClient opens a client from a redis:// URL.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// WithLookups reports every lookup to r.
func (c *ReportCache) WithLookups(r LookupRecorder) *ReportCache {
	c.lookups = r
	return c
}

func (c *ReportCache) CountClicks(ctx context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error) {
	if !c.cacheable(q) {
		return c.next.CountClicks(ctx, q)
	}

	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("report cache unavailable")
		c.lookups.CacheLookup("error")
		return c.next.CountClicks(ctx, q)
	}

	key := Key(q, gen)
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var entries []domain.RankedEntry
		if jsonErr := json.Unmarshal(data, &entries); jsonErr == nil {
			c.lookups.CacheLookup("hit")
			return entries, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		c.lookups.CacheLookup("error")
	case errors.Is(err, redis.Nil):
		c.lookups.CacheLookup("miss")
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("report cache unavailable")
		c.lookups.CacheLookup("error")
	}

	entries, err := c.next.CountClicks(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("report cache write failed")
		}
	}
	return entries, nil
}

func (c *ReportCache) RecentClicks(ctx context.Context, limit int) ([]domain.ClickLogEntry, error) {
	return c.next.RecentClicks(ctx, limit)
}

// Invalidate retires every cached ranking.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

// Links wraps repo so that deleting a link invalidates the cache. Deleted
// links must disappear from elapsed windows too.
func (c *ReportCache) Links(repo ports.LinkRepository) ports.LinkRepository {
	return &invalidatingRepository{LinkRepository: repo, cache: c}
}

type invalidatingRepository struct {
	ports.LinkRepository
	cache *ReportCache
}

func (r *invalidatingRepository) Delete(ctx context.Context, id int64) error {
	if err := r.LinkRepository.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.cache.Invalidate(ctx); err != nil {
		r.cache.logger.Error().Err(err).Int64("link_id", id).Msg("report cache invalidation failed")
	}
	return nil
}

func (c *ReportCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ReportCache) cacheable(q domain.ClickQuery) bool {
	if q.Rolling() {
		return false
	}
	now := c.clock.Now().UTC().Add(c.offset)
	return q.To.Before(now)
}

// Key identifies a bounded query under a cache generation.
func Key(q domain.ClickQuery, generation int64) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", keyPrefix, generation, q.From.Unix(), q.To.Unix(), q.Limit)
}

type nopRecorder struct{}

func (nopRecorder) CacheLookup(string) {}

var _ ports.ClickEventStore = (*ReportCache)(nil)
