package monitor

import (
	"slices"

	"threadwatch/internal/types"
)

// Input is anything the reducer consumes: an EventInput or a Signal.
type Input interface {
	input()
}

type EventInput struct {
	Event types.ProgressEvent
}

func (EventInput) input() {}

// Signal is a stream lifecycle notification.
type Signal int

const (
	SignalOpened Signal = iota + 1
	SignalClosedCleanly
	SignalClosedAbnormally
	// SignalErrored is a transport failure before or while the stream was
	// open, such as a refused dial.
	SignalErrored
)

func (Signal) input() {}

func (s Signal) String() string {
	switch s {
	case SignalOpened:
		return "opened"
	case SignalClosedCleanly:
		return "closed_cleanly"
	case SignalClosedAbnormally:
		return "closed_abnormally"
	case SignalErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Reduce returns the session state that follows s after in. It never
// modifies s; the returned Events slice is a fresh copy whenever it grew.
func Reduce(s State, in Input) State {
	if s.Status.Terminal() {
		return s
	}
	switch in := in.(type) {
	case Signal:
		return reduceSignal(s, in)
	case EventInput:
		return reduceEvent(s, in.Event)
	default:
		return s
	}
}

func reduceSignal(s State, sig Signal) State {
	switch sig {
	case SignalOpened:
		if s.Status == StatusConnecting {
			return State{Status: StatusRunning, RunID: s.RunID, Events: []types.ProgressEvent{}}
		}
	case SignalClosedAbnormally:
		if s.Status.active() {
			return fail(s, MessageClosedUnexpectedly)
		}
	case SignalErrored:
		if s.Status.active() {
			return fail(s, MessageConnectionError)
		}
	case SignalClosedCleanly:
		// Left as is: a clean close without a terminal event keeps the
		// session where it was.
	}
	return s
}

func reduceEvent(s State, ev types.ProgressEvent) State {
	switch ev.Kind {
	case types.EventCompleted:
		if s.Status.active() {
			next := appendEvent(s, ev)
			next.Status = StatusCompleted
			return next
		}
	case types.EventError:
		if s.Status.active() {
			msg, ok := ev.Message()
			if !ok || msg == "" {
				msg = MessageUnknownError
			}
			return fail(appendEvent(s, ev), msg)
		}
	default:
		if s.Status == StatusRunning {
			return appendEvent(s, ev)
		}
	}
	return s
}

func appendEvent(s State, ev types.ProgressEvent) State {
	s.Events = append(slices.Clip(s.Events), ev)
	return s
}

func fail(s State, msg string) State {
	s.Status = StatusFailed
	s.Err = msg
	return s
}
