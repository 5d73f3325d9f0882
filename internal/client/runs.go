package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"threadwatch/internal/logging"
	"threadwatch/internal/runid"
	"threadwatch/internal/types"
)

const (
	DefaultHistoryPage  = 1
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// StartRun asks the backend to start a monitoring run and returns its id.
// A 2xx answer that carries no usable run id is still a failure.
func (c *Client) StartRun(ctx context.Context, keywords []string) (string, error) {
	normalized, err := ValidateKeywords(keywords)
	if err != nil {
		return "", err
	}
	var resp StartRunResponse
	if err := c.doJSON(ctx, opStartRun, ErrStartFailed, http.MethodPost, apiPrefix+"/monitor/start", StartRunRequest{Keywords: normalized}, &resp); err != nil {
		return "", err
	}
	runID := strings.TrimSpace(resp.RunID)
	if runID == "" || strings.EqualFold(resp.Status, string(types.RunStatusFailed)) {
		detail := strings.TrimSpace(resp.Message)
		if detail == "" {
			detail = "backend returned no run id"
		}
		return "", &APIError{Op: opStartRun, StatusCode: http.StatusOK, Detail: detail, kind: ErrStartFailed}
	}
	c.logger.Info("run started", logging.F("run_id", runID), logging.F("keywords", len(normalized)))
	return runID, nil
}

func (c *Client) GetReport(ctx context.Context, id string) (*types.ReportData, error) {
	if err := runid.Validate(id); err != nil {
		return nil, err
	}
	var report types.ReportData
	path := apiPrefix + "/reports/" + url.PathEscape(id)
	if err := c.doJSON(ctx, opGetReport, ErrReportFetchFailed, http.MethodGet, path, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetHistory fetches one page of past runs. page is clamped to >= 1 and
// limit to [1, 100] before the request is built.
func (c *Client) GetHistory(ctx context.Context, page, limit int) (*types.HistoryPage, error) {
	page, limit = ClampHistoryParams(page, limit)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	var resp types.HistoryPage
	if err := c.doJSON(ctx, opGetHistory, ErrHistoryFetchFailed, http.MethodGet, apiPrefix+"/history?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Runs == nil {
		resp.Runs = []types.RunSummary{}
	}
	return &resp, nil
}

func ClampHistoryParams(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return page, limit
}

func (c *Client) streamAddress(id string) string {
	return fmt.Sprintf("%s%s/monitor/ws/%s", c.streamURL, apiPrefix, url.PathEscape(id))
}
