package monitor

import "threadwatch/internal/types"

type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further input can change a session in s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) active() bool {
	return s == StatusConnecting || s == StatusRunning
}

const (
	MessageUnknownError       = "Unknown error"
	MessageClosedUnexpectedly = "WebSocket connection closed unexpectedly"
	MessageConnectionError    = "WebSocket connection error"
)

// State is a snapshot of one monitor session. Events is shared between
// snapshots and must be treated as read-only.
type State struct {
	Status Status
	RunID  string
	Events []types.ProgressEvent
	// Err is set only when Status is StatusFailed.
	Err string
}

func (s State) Terminal() bool {
	return s.Status.Terminal()
}

// LastEvent returns the most recent event of the session, if any.
func (s State) LastEvent() (types.ProgressEvent, bool) {
	if len(s.Events) == 0 {
		return types.ProgressEvent{}, false
	}
	return s.Events[len(s.Events)-1], true
}

func changed(prev, next State) bool {
	return prev.Status != next.Status ||
		prev.RunID != next.RunID ||
		prev.Err != next.Err ||
		len(prev.Events) != len(next.Events)
}
