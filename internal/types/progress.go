package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type EventKind string

const (
	EventStatus          EventKind = "status"
	EventKeywordProgress EventKind = "keyword_progress"
	EventPipelineStats   EventKind = "pipeline_stats"
	EventCompleted       EventKind = "completed"
	EventError           EventKind = "error"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventStatus, EventKeywordProgress, EventPipelineStats, EventCompleted, EventError:
		return true
	default:
		return false
	}
}

func (k EventKind) Terminal() bool {
	return k == EventCompleted || k == EventError
}

var ErrMalformedFrame = errors.New("malformed progress frame")

// ProgressEvent is one inbound stream frame. Data is kept as an open map so
// fields the client does not interpret survive untouched.
type ProgressEvent struct {
	Kind EventKind      `json:"type"`
	Data map[string]any `json:"data"`

	raw json.RawMessage
	// opaque holds a data value that was valid JSON but not an object.
	opaque json.RawMessage
}

type StatusPayload struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type KeywordProgressPayload struct {
	Keyword string `json:"keyword"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

type PipelineStatsPayload struct {
	Scanned    int `json:"scanned"`
	Filtered   int `json:"filtered"`
	Duplicated int `json:"duplicated"`
	Valid      int `json:"valid"`
}

type CompletedPayload struct {
	RunID           string `json:"run_id"`
	ReportAvailable bool   `json:"report_available"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DecodeFrame parses a raw stream frame. The frame must be a JSON object
// with a known "type". A "data" value that is not an object is kept as
// opaque text and leaves Data empty.
func DecodeFrame(frame []byte) (ProgressEvent, error) {
	var envelope struct {
		Type *string         `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		return ProgressEvent{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if envelope.Type == nil {
		return ProgressEvent{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	kind := EventKind(*envelope.Type)
	if !kind.Valid() {
		return ProgressEvent{}, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, kind)
	}
	data := map[string]any{}
	raw := bytes.TrimSpace(envelope.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ProgressEvent{Kind: kind, Data: data}, nil
	}
	if raw[0] != '{' {
		return ProgressEvent{Kind: kind, Data: data, opaque: raw}, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return ProgressEvent{}, fmt.Errorf("%w: data: %v", ErrMalformedFrame, err)
	}
	return ProgressEvent{Kind: kind, Data: data, raw: raw}, nil
}

func (e ProgressEvent) decode(out any) bool {
	raw := e.raw
	if len(raw) == 0 {
		if len(e.Data) == 0 {
			return true
		}
		encoded, err := json.Marshal(e.Data)
		if err != nil {
			return false
		}
		raw = encoded
	}
	// Field-by-field leniency: a wrongly typed field must not hide the rest.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}
	for key, value := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{key: value})
		if err != nil {
			continue
		}
		_ = json.Unmarshal(single, out)
	}
	return true
}

func (e ProgressEvent) Status() (StatusPayload, bool) {
	var p StatusPayload
	if e.Kind != EventStatus {
		return p, false
	}
	return p, e.decode(&p)
}

func (e ProgressEvent) KeywordProgress() (KeywordProgressPayload, bool) {
	var p KeywordProgressPayload
	if e.Kind != EventKeywordProgress {
		return p, false
	}
	return p, e.decode(&p)
}

func (e ProgressEvent) PipelineStats() (PipelineStatsPayload, bool) {
	var p PipelineStatsPayload
	if e.Kind != EventPipelineStats {
		return p, false
	}
	return p, e.decode(&p)
}

func (e ProgressEvent) Completed() (CompletedPayload, bool) {
	var p CompletedPayload
	if e.Kind != EventCompleted {
		return p, false
	}
	return p, e.decode(&p)
}

func (e ProgressEvent) ErrorInfo() (ErrorPayload, bool) {
	var p ErrorPayload
	if e.Kind != EventError {
		return p, false
	}
	return p, e.decode(&p)
}

// Message returns data.message rendered as text and whether it was present.
// Non-string values are rendered as their JSON text.
func (e ProgressEvent) Message() (string, bool) {
	value, ok := e.Data["message"]
	if !ok || value == nil {
		return "", false
	}
	if text, ok := value.(string); ok {
		return text, true
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value), true
	}
	return string(encoded), true
}

// Describe renders a one-line summary of the event for progress logs.
func (e ProgressEvent) Describe() string {
	switch e.Kind {
	case EventKeywordProgress:
		if p, ok := e.KeywordProgress(); ok && p.Keyword != "" {
			return fmt.Sprintf("searching %q (%d/%d)", p.Keyword, p.Current, p.Total)
		}
	case EventPipelineStats:
		if p, ok := e.PipelineStats(); ok && len(e.Data) > 0 {
			return fmt.Sprintf("scanned %d, filtered %d, duplicated %d, valid %d", p.Scanned, p.Filtered, p.Duplicated, p.Valid)
		}
	case EventCompleted:
		if p, ok := e.Completed(); ok {
			if p.ReportAvailable {
				return "completed, report available"
			}
			return "completed"
		}
	case EventStatus, EventError:
		if msg, ok := e.Message(); ok {
			if p, ok := e.Status(); ok && p.Status != "" {
				return p.Status + ": " + msg
			}
			return msg
		}
	}
	return e.dataJSON()
}

func (e ProgressEvent) dataJSON() string {
	if len(e.Data) == 0 && len(e.opaque) > 0 {
		return string(e.opaque)
	}
	if len(e.Data) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(e.Data)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
