package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"threadwatch/internal/config"
	"threadwatch/internal/logging"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiPrefix = "/api"

type Config struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string
	// StreamBaseURL overrides the ws(s) root. Derived from BaseURL when empty.
	StreamBaseURL string
	// HTTPClient is used for request/response calls. A client with Timeout
	// and an instrumented transport is built when nil.
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logging.Logger
}

// Client talks to the monitoring backend. Request methods share no mutable
// state and are safe for concurrent use.
type Client struct {
	baseURL   string
	streamURL string
	http      *http.Client
	stream    *http.Client
	logger    logging.Logger
}

func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}
	streamURL := strings.TrimRight(strings.TrimSpace(cfg.StreamBaseURL), "/")
	if streamURL == "" {
		streamURL = config.StreamURLFor(baseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		baseURL:   baseURL,
		streamURL: streamURL,
		http:      httpClient,
		// Stream lifetime is bounded by its context; http.Client.Timeout
		// would cut long runs off.
		stream: &http.Client{Transport: httpClient.Transport},
		logger: logger.With(logging.F("component", "client")),
	}, nil
}

func NewFromConfig(cfg config.Config, logger logging.Logger) (*Client, error) {
	return New(Config{
		BaseURL:       cfg.BaseURL(),
		StreamBaseURL: cfg.StreamBaseURL(),
		Timeout:       cfg.Timeout(),
		Logger:        logger,
	})
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) doJSON(ctx context.Context, op string, kind error, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", logging.F("method", method), logging.F("path", path), logging.F("err", err))
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request done",
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(op, kind, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to %s: decode response: %w", op, err)
	}
	return nil
}

func decodeAPIError(op string, kind error, resp *http.Response) error {
	apiErr := &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		kind:       kind,
	}
	var payload struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&payload); err == nil {
		if detail, ok := payload.Detail.(string); ok {
			apiErr.Detail = detail
		} else if payload.Error != "" {
			apiErr.Detail = payload.Error
		}
	}
	return apiErr
}

// statusText returns the reason phrase of the response status line.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
