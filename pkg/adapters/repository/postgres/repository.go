// Package postgres stores links and the click log in PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
)

type PostgresRepository struct {
	db *sql.DB
}

// IsPostgresURL reports whether dbURL should be opened with this package.
func IsPostgresURL(dbURL string) bool {
	return strings.HasPrefix(dbURL, "postgres://") || strings.HasPrefix(dbURL, "postgresql://")
}

func NewPostgresRepository(ctx context.Context, dbURL string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id BIGSERIAL PRIMARY KEY,
	original_url TEXT NOT NULL,
	short_code TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS clicks (
	id BIGSERIAL PRIMARY KEY,
	click_time TIMESTAMP NOT NULL,
	short_code TEXT NOT NULL,
	referrer TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	ip_address TEXT NOT NULL DEFAULT '',
	country_code TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_clicks_time_code ON clicks(click_time, short_code);
`

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (original_url, short_code, title, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	return r.db.QueryRowContext(ctx, query, link.OriginalURL, link.ShortCode, link.Title, link.CreatedAt).Scan(&link.ID)
}

func (r *PostgresRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT id, original_url, short_code, title, created_at FROM links WHERE short_code = $1 AND deleted_at IS NULL`

	var link domain.Link
	err := r.db.QueryRowContext(ctx, query, code).Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &link.Title, &link.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE links SET deleted_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) RecordClick(ctx context.Context, click *domain.ClickEvent) error {
	query := `INSERT INTO clicks (click_time, short_code, referrer, user_agent, ip_address, country_code)
			  VALUES ($1::timestamp, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		click.Timestamp.Format(domain.ClickTimeLayout), click.ShortCode, click.Referrer,
		click.UserAgent, click.ClientIP, click.CountryCode)
	return err
}

func (r *PostgresRepository) CountClicks(ctx context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error) {
	query, args := countClicksQuery(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.RankedEntry{}
	for rows.Next() {
		var e domain.RankedEntry
		if err := rows.Scan(&e.ShortCode, &e.Clicks, &e.OriginalURL, &e.Title); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// countClicksQuery builds the grouped count with numbered placeholders.
func countClicksQuery(q domain.ClickQuery) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{q.From.Format(domain.ClickTimeLayout)}

	b.WriteString(`SELECT c.short_code, COUNT(*) AS clicks, l.original_url, l.title
		FROM clicks c
		JOIN links l ON l.short_code = c.short_code AND l.deleted_at IS NULL
		WHERE c.click_time >= $1::timestamp`)

	if !q.Rolling() {
		args = append(args, q.To.Format(domain.ClickTimeLayout))
		fmt.Fprintf(&b, " AND c.click_time <= $%d::timestamp", len(args))
	}

	b.WriteString(`
		GROUP BY c.short_code, l.original_url, l.title
		ORDER BY clicks DESC, c.short_code ASC`)

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

func (r *PostgresRepository) RecentClicks(ctx context.Context, limit int) ([]domain.ClickLogEntry, error) {
	query := `
		SELECT c.click_time, c.short_code, c.referrer, c.user_agent, c.ip_address, c.country_code,
			l.original_url, l.title
		FROM clicks c
		JOIN links l ON l.short_code = c.short_code AND l.deleted_at IS NULL
		ORDER BY c.click_time DESC, c.id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []domain.ClickLogEntry{}
	for rows.Next() {
		var c domain.ClickLogEntry
		var clickTime time.Time
		if err := rows.Scan(&clickTime, &c.ShortCode, &c.Referrer, &c.UserAgent, &c.ClientIP, &c.CountryCode, &c.OriginalURL, &c.Title); err != nil {
			return nil, err
		}
		c.Timestamp = clickTime.UTC()
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

var (
	_ ports.LinkRepository  = (*PostgresRepository)(nil)
	_ ports.ClickEventStore = (*PostgresRepository)(nil)
)
