package client

import (
	"errors"
	"fmt"

	"threadwatch/internal/runid"
)

var (
	ErrInvalidIdentifier  = runid.ErrInvalid
	ErrInvalidKeywords    = errors.New("invalid keywords")
	ErrStartFailed        = errors.New("start failed")
	ErrReportFetchFailed  = errors.New("report fetch failed")
	ErrHistoryFetchFailed = errors.New("history fetch failed")
)

const (
	opStartRun   = "start monitor"
	opGetReport  = "get report"
	opGetHistory = "get history"
)

// APIError is a rejected backend call. It unwraps to one of ErrStartFailed,
// ErrReportFetchFailed or ErrHistoryFetchFailed.
type APIError struct {
	Op         string
	StatusCode int
	// Status is the reason phrase of the response, e.g. "Internal Server Error".
	Status string
	// Detail is the backend's own explanation, when it sent one.
	Detail string

	kind error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	reason := e.Status
	if e.StatusCode >= 200 && e.StatusCode < 300 && e.Detail != "" {
		reason = e.Detail
	}
	if reason == "" {
		reason = e.Detail
	}
	if reason == "" {
		reason = fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to %s: %s", e.Op, reason)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.kind
}

func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

func IsNotFound(err error) bool {
	apiErr := AsAPIError(err)
	return apiErr != nil && apiErr.StatusCode == 404
}
