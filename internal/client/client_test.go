package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"threadwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunID = "3f2c6a1e-9b7d-4c1e-8f5a-2d6b9e0c4a71"

func newTestClient(t *testing.T, backend *testutil.Backend) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: backend.URL()})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	require.Error(t, err)
}

func TestNewDerivesStreamURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://monitor.example.com/"})
	require.NoError(t, err)
	assert.Equal(t, "https://monitor.example.com", c.BaseURL())
	assert.Equal(t, "wss://monitor.example.com/api/monitor/ws/"+testRunID, c.streamAddress(testRunID))
}

func TestStartRunSendsNormalizedKeywords(t *testing.T) {
	backend := testutil.NewBackend(t)
	var got []string
	backend.OnStart(func(keywords []string) testutil.Reply {
		got = keywords
		return testutil.Reply{Status: http.StatusOK, Body: map[string]any{"run_id": testRunID, "status": "pending", "message": "ok"}}
	})
	c := newTestClient(t, backend)

	id, err := c.StartRun(context.Background(), []string{" earthquake ", "", "Tokyo"})
	require.NoError(t, err)
	assert.Equal(t, testRunID, id)
	assert.Equal(t, []string{"earthquake", "Tokyo"}, got)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/api/monitor/start", reqs[0].Path)
	var body map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Contains(t, body, "keywords")
}

func TestStartRunServerError(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.OnStart(func([]string) testutil.Reply {
		return testutil.Reply{Status: http.StatusInternalServerError, Body: map[string]any{"detail": "boom"}}
	})
	c := newTestClient(t, backend)

	_, err := c.StartRun(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartFailed))
	assert.Equal(t, "failed to start monitor: Internal Server Error", err.Error())
	apiErr := AsAPIError(err)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Detail)
}

func TestStartRunRejectedEnvelope(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.OnStart(func([]string) testutil.Reply {
		return testutil.Reply{Status: http.StatusOK, Body: map[string]any{
			"run_id":  "",
			"status":  "failed",
			"message": "Too many concurrent runs (max 3)",
		}}
	})
	c := newTestClient(t, backend)

	_, err := c.StartRun(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStartFailed))
	assert.Contains(t, err.Error(), "Too many concurrent runs")
}

func TestStartRunInvalidKeywordsSkipsRequest(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.StartWith(testRunID)
	c := newTestClient(t, backend)

	_, err := c.StartRun(context.Background(), []string{" ", ""})
	require.ErrorIs(t, err, ErrInvalidKeywords)
	assert.Empty(t, backend.Requests())
}

func TestGetReportInvalidIDSkipsRequest(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newTestClient(t, backend)

	for _, id := range []string{"", "abc", strings.Repeat("x", 36), "../../etc/passwd"} {
		_, err := c.GetReport(context.Background(), id)
		require.ErrorIs(t, err, ErrInvalidIdentifier, "id %q", id)
	}
	assert.Empty(t, backend.Requests())
}

func TestGetReportDecodesBody(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetReport(testRunID, testutil.Reply{Status: http.StatusOK, Body: map[string]any{
		"run": map[string]any{
			"id":         testRunID,
			"status":     "completed",
			"keywords":   []string{"a"},
			"created_at": "2025-01-02 03:04:05",
			"stats":      map[string]any{"total_searched": 40, "valid_count": 3},
		},
		"analyzed_posts": nil,
		"big_fish":       nil,
		"category_stats": []any{map[string]any{"name": "politics", "count": 2, "percentage": 66.7}},
	}})
	c := newTestClient(t, backend)

	report, err := c.GetReport(context.Background(), testRunID)
	require.NoError(t, err)
	assert.Equal(t, testRunID, report.Run.ID)
	require.NotNil(t, report.Run.Stats)
	assert.Equal(t, 40, report.Run.Stats.TotalSearched)
	assert.NotNil(t, report.AnalyzedPosts)
	assert.Empty(t, report.BigFish)
	require.Len(t, report.CategoryStats, 1)
	assert.Equal(t, 2025, report.Run.CreatedAt.Year())
}

func TestGetReportNotFound(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newTestClient(t, backend)

	_, err := c.GetReport(context.Background(), testRunID)
	require.ErrorIs(t, err, ErrReportFetchFailed)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "failed to get report: Not Found", err.Error())
}

func TestGetHistoryClampsParams(t *testing.T) {
	backend := testutil.NewBackend(t)
	c := newTestClient(t, backend)

	_, err := c.GetHistory(context.Background(), 0, 500)
	require.NoError(t, err)
	_, err = c.GetHistory(context.Background(), -5, 0)
	require.NoError(t, err)

	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "limit=100&page=1", reqs[0].Query)
	assert.Equal(t, "limit=1&page=1", reqs[1].Query)
}

func TestGetHistoryDecodesPage(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.OnHistory(func(page, limit int) testutil.Reply {
		return testutil.Reply{Status: http.StatusOK, Body: map[string]any{
			"runs": []any{map[string]any{
				"id":         testRunID,
				"status":     "completed",
				"keywords":   []string{"a", "b"},
				"created_at": "2025-01-02T03:04:05Z",
				"stats":      map[string]any{"valid_count": 7},
			}},
			"total": 41,
			"page":  page,
			"limit": limit,
		}}
	})
	c := newTestClient(t, backend)

	page, err := c.GetHistory(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Runs, 1)
	require.NotNil(t, page.Runs[0].Stats)
	assert.Equal(t, 7, page.Runs[0].Stats.ValidCount)
}

func TestGetHistoryServerError(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.OnHistory(func(int, int) testutil.Reply {
		return testutil.Reply{Status: http.StatusServiceUnavailable}
	})
	c := newTestClient(t, backend)

	_, err := c.GetHistory(context.Background(), 1, 20)
	require.ErrorIs(t, err, ErrHistoryFetchFailed)
	assert.Equal(t, "failed to get history: Service Unavailable", err.Error())
}

func TestClampHistoryParams(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 500, 1, 100},
		{-5, 0, 1, 1},
		{3, 20, 3, 20},
		{1, 100, 1, 100},
		{1, 101, 1, 100},
	}
	for _, tc := range cases {
		page, limit := ClampHistoryParams(tc.page, tc.limit)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantLimit, limit)
	}
}
