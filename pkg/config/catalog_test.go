package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

const sampleCatalog = `
reports:
  - label: 30 minutes
    kind: rolling
    seconds: 1800
  - label: yesterday
    kind: fixed
    granularity: day
    periods_ago: 1
    limit: 20
  - label: six hours
    seconds: 21600
  - label: this month
    granularity: month
`

func writeCatalog(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), sampleCatalog)

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, 4)

	assert.Equal(t, domain.ReportRequest{Kind: domain.RollingReport, Label: "30 minutes", Seconds: 1800}, catalog[0])
	assert.Equal(t, domain.ReportRequest{Kind: domain.FixedReport, Label: "yesterday", Granularity: domain.Day, PeriodsAgo: 1, RowLimit: 20}, catalog[1])
	assert.Equal(t, domain.RollingReport, catalog[2].Kind)
	assert.Equal(t, domain.FixedReport, catalog[3].Kind)
	assert.Equal(t, domain.Month, catalog[3].Granularity)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalog(writeCatalog(t, dir, "reports:\n  - kind: rolling\n    seconds: 0\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, dir, "reports:\n  - kind: sliding\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, dir, "reports: [\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalogHolder_FallbackWithoutFile(t *testing.T) {
	fallback := []domain.ReportRequest{domain.Fixed(domain.Day, 0, "today")}
	h, err := NewCatalogHolder("", fallback, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, fallback, h.Get())
	assert.NoError(t, h.Reload())
	assert.NoError(t, h.Watch())
	h.Stop()
}

func TestCatalogHolder_ReloadKeepsOldOnError(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	h, err := NewCatalogHolder(path, nil, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, h.Get(), 4)

	writeCatalog(t, dir, "reports: [\n")
	assert.Error(t, h.Reload())
	assert.Len(t, h.Get(), 4)

	writeCatalog(t, dir, "reports:\n  - granularity: year\n")
	require.NoError(t, h.Reload())
	assert.Len(t, h.Get(), 1)
}

func TestCatalogHolder_WatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)

	h, err := NewCatalogHolder(path, nil, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, h.Watch())
	defer h.Stop()

	writeCatalog(t, dir, "reports:\n  - granularity: week\n    periods_ago: 1\n")

	assert.Eventually(t, func() bool {
		return len(h.Get()) == 1
	}, 2*time.Second, 20*time.Millisecond)
}
