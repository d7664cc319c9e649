package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
	"github.com/wadjakorntonsri/popular-clicks/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_url TEXT NOT NULL,
		short_code TEXT NOT NULL UNIQUE,
		title TEXT,
		created_at TEXT NOT NULL,
		deleted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_links_short_code ON links(short_code);

	CREATE TABLE IF NOT EXISTS clicks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		click_time TEXT NOT NULL,
		short_code TEXT NOT NULL,
		referrer TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		country_code TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_clicks_time_code ON clicks(click_time, short_code);
	`
	_, err := db.Exec(query)
	return err
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `INSERT INTO links (original_url, short_code, title, created_at) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, link.OriginalURL, link.ShortCode, link.Title, link.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	link.ID = id
	return nil
}

func (r *SQLiteRepository) GetByShortCode(ctx context.Context, code string) (*domain.Link, error) {
	query := `SELECT id, original_url, short_code, COALESCE(title, ''), created_at
			  FROM links WHERE short_code = ? AND deleted_at IS NULL`

	var link domain.Link
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, code).Scan(&link.ID, &link.OriginalURL, &link.ShortCode, &link.Title, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	link.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &link, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	query := `UPDATE links SET deleted_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) RecordClick(ctx context.Context, click *domain.ClickEvent) error {
	query := `INSERT INTO clicks (click_time, short_code, referrer, user_agent, ip_address, country_code)
			  VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		click.Timestamp.Format(domain.ClickTimeLayout), click.ShortCode, click.Referrer,
		click.UserAgent, click.ClientIP, click.CountryCode)
	return err
}

// CountClicks groups the click log by live link inside the query bounds.
// Click times are stored as fixed-width text, so the bounds compare lexically.
func (r *SQLiteRepository) CountClicks(ctx context.Context, q domain.ClickQuery) ([]domain.RankedEntry, error) {
	query := `
		SELECT c.short_code, COUNT(*) AS clicks, l.original_url, COALESCE(l.title, '')
		FROM clicks c
		JOIN links l ON l.short_code = c.short_code AND l.deleted_at IS NULL
		WHERE c.click_time >= ?`
	args := []interface{}{q.From.Format(domain.ClickTimeLayout)}

	if !q.Rolling() {
		query += " AND c.click_time <= ?"
		args = append(args, q.To.Format(domain.ClickTimeLayout))
	}

	query += `
		GROUP BY c.short_code, l.original_url, l.title
		ORDER BY clicks DESC, c.short_code ASC`

	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

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

func (r *SQLiteRepository) RecentClicks(ctx context.Context, limit int) ([]domain.ClickLogEntry, error) {
	query := `
		SELECT c.click_time, c.short_code, c.referrer, c.user_agent, c.ip_address, c.country_code,
			l.original_url, COALESCE(l.title, '')
		FROM clicks c
		JOIN links l ON l.short_code = c.short_code AND l.deleted_at IS NULL
		ORDER BY c.click_time DESC, c.id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []domain.ClickLogEntry{}
	for rows.Next() {
		var c domain.ClickLogEntry
		var clickTime string
		if err := rows.Scan(&clickTime, &c.ShortCode, &c.Referrer, &c.UserAgent, &c.ClientIP, &c.CountryCode, &c.OriginalURL, &c.Title); err != nil {
			return nil, err
		}
		if c.Timestamp, err = time.Parse(domain.ClickTimeLayout, clickTime); err != nil {
			return nil, fmt.Errorf("click time %q: %w", clickTime, err)
		}
		clicks = append(clicks, c)
	}
	return clicks, rows.Err()
}

// Ensure interface compliance
var (
	_ ports.LinkRepository  = (*SQLiteRepository)(nil)
	_ ports.ClickEventStore = (*SQLiteRepository)(nil)
)
