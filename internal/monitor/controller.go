package monitor

import (
	"context"
	"sync"
	"time"

	"threadwatch/internal/client"
	"threadwatch/internal/logging"
	"threadwatch/internal/types"
)

// API is the part of the backend client a Controller drives.
type API interface {
	StartRun(ctx context.Context, keywords []string) (string, error)
	OpenStream(ctx context.Context, runID string) (<-chan client.StreamMessage, func(), error)
}

// Recorder observes session activity, typically for metrics.
type Recorder interface {
	SessionStarted()
	SessionFinished(outcome string, elapsed time.Duration)
	EventApplied(kind string)
	FrameDropped()
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted()                       {}
func (nopRecorder) SessionFinished(string, time.Duration) {}
func (nopRecorder) EventApplied(string)                   {}
func (nopRecorder) FrameDropped()                         {}

const outcomeAbandoned = "abandoned"

type Option func(*Controller)

func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(c *Controller) {
		if recorder != nil {
			c.recorder = recorder
		}
	}
}

type streamHandle struct {
	cancel func()
	done   chan struct{}
}

func (h *streamHandle) stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}

// Controller owns a single monitor session at a time. Every state change is
// published to subscribers in order. Subscribers run while the controller
// lock is held and must not call back into the Controller.
type Controller struct {
	api      API
	logger   logging.Logger
	recorder Recorder

	mu        sync.Mutex
	state     State
	session   uint64
	stream    *streamHandle
	startedAt time.Time
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(State)
}

func NewController(api API, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		logger:   logging.Nop(),
		recorder: nopRecorder{},
		state:    State{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.F("component", "monitor"))
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn for every subsequent state change and returns a
// func that removes it.
func (c *Controller) Subscribe(fn func(State)) func() {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, obs := range c.observers {
			if obs.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// Start replaces any current session with a new one for keywords. The
// previous stream is closed before Start contacts the backend. ctx bounds
// the start request; the stream itself lives until Reset or the next Start.
// The returned error is the start or stream-open failure that moved the
// session to StatusFailed, or nil.
func (c *Controller) Start(ctx context.Context, keywords []string) error {
	c.mu.Lock()
	c.session++
	session := c.session
	old := c.stream
	c.stream = nil
	c.abandonLocked()
	c.startedAt = time.Now()
	c.setLocked(State{Status: StatusConnecting})
	c.mu.Unlock()

	old.stop()
	c.recorder.SessionStarted()
	c.logger.Info("session starting", logging.F("session", session), logging.F("keywords", keywords))

	runID, err := c.api.StartRun(ctx, keywords)

	c.mu.Lock()
	defer c.mu.Unlock()
	if session != c.session {
		c.logger.Debug("start superseded", logging.F("session", session))
		return nil
	}
	if err != nil {
		c.logger.Warn("start failed", logging.F("session", session), logging.F("err", err))
		c.failLocked(err.Error())
		return err
	}

	c.setLocked(State{Status: StatusConnecting, RunID: runID})
	streamCtx := context.WithoutCancel(ctx)
	ch, cancel, err := c.api.OpenStream(streamCtx, runID)
	if err != nil {
		c.logger.Warn("stream open failed", logging.F("run_id", runID), logging.F("err", err))
		c.failLocked(err.Error())
		return err
	}
	handle := &streamHandle{cancel: cancel, done: make(chan struct{})}
	c.stream = handle
	go c.pump(session, runID, ch, handle)
	return nil
}

// Reset closes any open stream and returns the controller to StatusIdle.
// No state from the closed stream is published once Reset begins.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.session++
	old := c.stream
	c.stream = nil
	c.abandonLocked()
	c.setLocked(State{Status: StatusIdle})
	c.mu.Unlock()

	old.stop()
}

func (c *Controller) pump(session uint64, runID string, ch <-chan client.StreamMessage, handle *streamHandle) {
	defer close(handle.done)
	logger := c.logger.With(logging.F("run_id", runID), logging.F("session", session))
	for msg := range ch {
		var in Input
		switch msg.Signal {
		case client.StreamOpened:
			in = SignalOpened
		case client.StreamFrame:
			ev, err := types.DecodeFrame(msg.Payload)
			if err != nil {
				logger.Debug("dropping frame", logging.F("err", err))
				c.recorder.FrameDropped()
				continue
			}
			in = EventInput{Event: ev}
		case client.StreamClosedCleanly:
			logger.Debug("stream closed", logging.F("code", msg.Code), logging.F("reason", msg.Reason))
			in = SignalClosedCleanly
		case client.StreamClosedAbnormally:
			in = SignalClosedAbnormally
		case client.StreamError:
			in = SignalErrored
		default:
			continue
		}
		c.deliver(session, in, handle, logger)
	}
}

func (c *Controller) deliver(session uint64, in Input, handle *streamHandle, logger logging.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if session != c.session {
		return
	}
	prev := c.state
	next := Reduce(prev, in)
	if in == SignalClosedCleanly && prev.Status.active() {
		logger.Warn("stream closed cleanly before a terminal event; session stays " + prev.Status.String())
	}
	if !changed(prev, next) {
		return
	}
	if ev, ok := in.(EventInput); ok {
		c.recorder.EventApplied(string(ev.Event.Kind))
	}
	c.setLocked(next)
	if next.Terminal() {
		handle.cancel()
		c.finishedLocked(next)
	}
}

func (c *Controller) failLocked(msg string) {
	next := c.state
	next.Status = StatusFailed
	next.Err = msg
	c.setLocked(next)
	c.finishedLocked(next)
}

func (c *Controller) abandonLocked() {
	if c.state.Status.active() {
		c.recorder.SessionFinished(outcomeAbandoned, time.Since(c.startedAt))
	}
}

func (c *Controller) finishedLocked(s State) {
	elapsed := time.Since(c.startedAt)
	c.recorder.SessionFinished(s.Status.String(), elapsed)
	fields := []logging.Field{
		logging.F("run_id", s.RunID),
		logging.F("status", s.Status.String()),
		logging.F("events", len(s.Events)),
		logging.F("elapsed", elapsed),
	}
	if s.Err != "" {
		fields = append(fields, logging.F("error", s.Err))
	}
	c.logger.Info("session finished", fields...)
}

func (c *Controller) setLocked(s State) {
	c.state = s
	for _, obs := range c.observers {
		obs.fn(s)
	}
}
