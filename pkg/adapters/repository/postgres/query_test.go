package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

func TestCountClicksQuery_Fixed(t *testing.T) {
	from := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)

	query, args := countClicksQuery(domain.ClickQuery{From: from, To: to, Limit: 10})

	assert.Contains(t, query, "c.click_time >= $1::timestamp")
	assert.Contains(t, query, "c.click_time <= $2::timestamp")
	assert.Contains(t, query, "ORDER BY clicks DESC, c.short_code ASC")
	assert.Contains(t, query, "LIMIT $3")
	assert.Equal(t, []interface{}{"2024-06-10 00:00:00", "2024-06-10 23:59:59", 10}, args)
}

func TestCountClicksQuery_RollingUnlimited(t *testing.T) {
	from := time.Date(2024, 6, 10, 17, 55, 0, 0, time.UTC)

	query, args := countClicksQuery(domain.ClickQuery{From: from})

	assert.NotContains(t, query, "<=")
	assert.NotContains(t, query, "LIMIT")
	assert.Equal(t, []interface{}{"2024-06-10 17:55:00"}, args)
}

func TestIsPostgresURL(t *testing.T) {
	assert.True(t, IsPostgresURL("postgres://user:pw@localhost/clicks"))
	assert.True(t, IsPostgresURL("postgresql://localhost/clicks"))
	assert.False(t, IsPostgresURL("file:db.sqlite"))
	assert.False(t, IsPostgresURL("libsql://db.turso.io"))
}
