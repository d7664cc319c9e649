package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/clock"
	"github.com/wadjakorntonsri/popular-clicks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/popular-clicks/pkg/bootstrap"
	"github.com/wadjakorntonsri/popular-clicks/pkg/config"
	"github.com/wadjakorntonsri/popular-clicks/pkg/core/domain"
)

const e2eSecret = "e2e-secret"

func authCookie(t *testing.T) *http.Cookie {
	t.Helper()
	signed, err := handler.IssueAdminToken([]byte(e2eSecret), "admin@example.com", time.Now().Add(time.Hour))
	require.NoError(t, err)
	return &http.Cookie{Name: "auth_token", Value: signed}
}

func TestIntegration(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:     "file:e2e?mode=memory&cache=shared",
		DefaultRowLimit: 10,
		OffsetSeconds:   2 * 60 * 60,
		JWTSecret:       e2eSecret,
		FrontendURL:     "http://localhost",
	}
	// 16:00 UTC is 18:00 in click wall time.
	fake := clock.NewFake(time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC))

	app, err := bootstrap.New(context.Background(), cfg, zerolog.Nop(), bootstrap.Options{Clock: fake})
	require.NoError(t, err)
	defer app.Close()

	server := httptest.NewServer(app.Handler())
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	cookie := authCookie(t)

	do := func(method, path string, body []byte) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, server.URL+path, bytes.NewReader(body))
		require.NoError(t, err)
		req.AddCookie(cookie)
		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}
	decode := func(resp *http.Response, v interface{}) {
		t.Helper()
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}

	// Create links
	var codes []string
	for _, url := range []string{"https://abc.example", "https://xyz.example"} {
		body, _ := json.Marshal(map[string]string{"original_url": url, "title": "Example"})
		resp := do("POST", "/api/v1/links", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var link domain.Link
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&link))
		resp.Body.Close()
		require.NotEmpty(t, link.ShortCode)
		codes = append(codes, link.ShortCode)
	}

	// Follow short links: 5 clicks on the first, 3 on the second
	for i, n := range []int{5, 3} {
		for j := 0; j < n; j++ {
			resp, err := client.Get(server.URL + "/open/" + codes[i])
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusFound, resp.StatusCode)
		}
	}
	resp, err := client.Get(server.URL + "/open/" + codes[0] + "?no_stat=1")
	require.NoError(t, err)
	resp.Body.Close()

	// Clicks are recorded asynchronously
	countLogged := func() int {
		req, _ := http.NewRequest("GET", server.URL+"/api/v1/clicks?limit=50", nil)
		req.AddCookie(cookie)
		resp, err := client.Do(req)
		if err != nil {
			return -1
		}
		defer resp.Body.Close()
		var log struct {
			Data []domain.ClickLogEntry `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&log); err != nil {
			return -1
		}
		return len(log.Data)
	}
	assert.Eventually(t, func() bool { return countLogged() == 8 }, 3*time.Second, 20*time.Millisecond)

	// Today, in click wall time
	var today domain.ReportResult
	decode(do("GET", "/api/v1/reports/fixed?granularity=day", nil), &today)
	require.Len(t, today.Entries, 2)
	assert.Equal(t, codes[0], today.Entries[0].ShortCode)
	assert.Equal(t, int64(5), today.Entries[0].Clicks)
	assert.Equal(t, int64(3), today.Entries[1].Clicks)
	assert.Equal(t, int64(8), today.TotalClicks)
	assert.True(t, today.SoFar)
	assert.Equal(t, "today (10th June 2024) (so far)", today.Description)

	// Yesterday has nothing, which is not an error
	var yesterday domain.ReportResult
	decode(do("GET", "/api/v1/reports/fixed?granularity=day&ago=1", nil), &yesterday)
	assert.True(t, yesterday.NoResults)

	// Ten minutes later the 5 minute rolling report is empty, the hour is not
	fake.Advance(10 * time.Minute)
	var rolling domain.ReportResult
	decode(do("GET", "/api/v1/reports/rolling?seconds=300&limit=1", nil), &rolling)
	assert.True(t, rolling.NoResults)
	decode(do("GET", "/api/v1/reports/rolling?seconds=3600&limit=1", nil), &rolling)
	require.Len(t, rolling.Entries, 1)
	assert.False(t, rolling.UsedDefaultLimit)

	// Whole catalog
	var catalog domain.CatalogResult
	decode(do("GET", "/api/v1/reports", nil), &catalog)
	require.Len(t, catalog.Reports, 12)
	assert.NotEmpty(t, catalog.ID)
	for _, r := range catalog.Reports {
		assert.False(t, r.Failed(), r.Description)
	}

	// Deleted links fall out of reports
	resp = do("DELETE", "/api/v1/links/1", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	decode(do("GET", "/api/v1/reports/fixed?granularity=day", nil), &today)
	require.Len(t, today.Entries, 1)
	assert.Equal(t, codes[1], today.Entries[0].ShortCode)

	// Metrics
	resp, err = client.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "popular_clicks_clicks_recorded_total 8")
	assert.Contains(t, string(metrics), `popular_clicks_reports_total{kind="fixed",outcome="ok"}`)
}
