package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"threadwatch/internal/client"
)

type fakeStream struct {
	runID  string
	ctx    context.Context
	cancel context.CancelFunc
	ch     chan client.StreamMessage

	mu     sync.Mutex
	closed bool
}

// send delivers msg unless the stream has been cancelled.
func (s *fakeStream) send(msg client.StreamMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *fakeStream) frame(payload string) bool {
	return s.send(client.StreamMessage{Signal: client.StreamFrame, Payload: []byte(payload)})
}

func (s *fakeStream) signal(sig client.StreamSignal) bool {
	return s.send(client.StreamMessage{Signal: sig})
}

func (s *fakeStream) cancelled() bool {
	return s.ctx.Err() != nil
}

type fakeAPI struct {
	mu        sync.Mutex
	runIDs    []string
	startErr  error
	openErr   error
	startGate chan struct{}
	streams   map[string]*fakeStream
	opened    []string
	active    int
	maxActive int
}

func newFakeAPI(runIDs ...string) *fakeAPI {
	return &fakeAPI{runIDs: runIDs, streams: map[string]*fakeStream{}}
}

func (f *fakeAPI) StartRun(ctx context.Context, keywords []string) (string, error) {
	f.mu.Lock()
	gate := f.startGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return "", f.startErr
	}
	if len(f.runIDs) == 0 {
		return "", errors.New("no run ids left")
	}
	id := f.runIDs[0]
	f.runIDs = f.runIDs[1:]
	return id, nil
}

func (f *fakeAPI) OpenStream(ctx context.Context, runID string) (<-chan client.StreamMessage, func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &fakeStream{runID: runID, ctx: sctx, cancel: cancel, ch: make(chan client.StreamMessage)}
	f.streams[runID] = s
	f.opened = append(f.opened, runID)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	go func() {
		<-sctx.Done()
		s.mu.Lock()
		s.closed = true
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
		close(s.ch)
		s.mu.Unlock()
	}()
	return s.ch, cancel, nil
}

func (f *fakeAPI) stream(t *testing.T, runID string) *fakeStream {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.streams[runID]
	if !ok {
		t.Fatalf("stream %s was never opened", runID)
	}
	return s
}

func (f *fakeAPI) openedStreams() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func (f *fakeAPI) peakActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) add(s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) statuses() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Status, 0, len(l.states))
	for _, s := range l.states {
		out = append(out, s.Status)
	}
	return out
}

func (l *stateLog) all() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[string]int
	applied  map[string]int
	dropped  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{finished: map[string]int{}, applied: map[string]int{}}
}

func (r *countingRecorder) SessionStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
}

func (r *countingRecorder) SessionFinished(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished[outcome]++
}

func (r *countingRecorder) EventApplied(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied[kind]++
}

func (r *countingRecorder) FrameDropped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}

func (r *countingRecorder) droppedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *countingRecorder) finishedCount(outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished[outcome]
}
