package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// Request is one call recorded by Backend.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// StreamScript describes what the fake backend does on a progress stream.
// Frames are sent as text messages in order. Afterwards the connection is
// closed with CloseCode, dropped without a close frame when Drop is set, or
// held open until the client leaves when neither is set.
type StreamScript struct {
	Frames      []string
	FrameDelay  time.Duration
	CloseCode   websocket.StatusCode
	CloseReason string
	Drop        bool
	// Release, when set, must be closed before any frame is sent.
	Release <-chan struct{}
}

type Reply struct {
	Status int
	Body   any
}

// Backend is an in-process stand-in for the monitoring service.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	start    func(keywords []string) Reply
	reports  map[string]Reply
	history  func(page, limit int) Reply
	streams  map[string]StreamScript
	requests []Request
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		reports: map[string]Reply{},
		streams: map[string]StreamScript{},
	}
	r := chi.NewRouter()
	r.Use(b.record)
	r.Post("/api/monitor/start", b.handleStart)
	r.Get("/api/monitor/ws/{id}", b.handleStream)
	r.Get("/api/reports/{id}", b.handleReport)
	r.Get("/api/history", b.handleHistory)
	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

func (b *Backend) OnStart(fn func(keywords []string) Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = fn
}

// StartWith makes every start call succeed with runID.
func (b *Backend) StartWith(runID string) {
	b.OnStart(func([]string) Reply {
		return Reply{Status: http.StatusOK, Body: map[string]any{
			"run_id":  runID,
			"status":  "pending",
			"message": "Monitoring task started",
		}}
	})
}

func (b *Backend) SetReport(id string, reply Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports[id] = reply
}

func (b *Backend) OnHistory(fn func(page, limit int) Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = fn
}

func (b *Backend) SetStream(id string, script StreamScript) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streams[id] = script
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && r.Method != http.MethodGet {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytesReader(body))
		}
		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid body"})
		return
	}
	b.mu.Lock()
	fn := b.start
	b.mu.Unlock()
	if fn == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "no start handler"})
		return
	}
	reply := fn(req.Keywords)
	writeJSON(w, reply.Status, reply.Body)
}

func (b *Backend) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	reply, ok := b.reports[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Run not found"})
		return
	}
	writeJSON(w, reply.Status, reply.Body)
}

func (b *Backend) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	b.mu.Lock()
	fn := b.history
	b.mu.Unlock()
	if fn == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []any{}, "total": 0, "page": page, "limit": limit})
		return
	}
	reply := fn(page, limit)
	writeJSON(w, reply.Status, reply.Body)
}

func (b *Backend) handleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	script, ok := b.streams[id]
	b.mu.Unlock()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	ctx := conn.CloseRead(r.Context())
	if !ok {
		_ = conn.Close(websocket.StatusCode(4004), "Run not found")
		return
	}
	if script.Release != nil {
		select {
		case <-script.Release:
		case <-ctx.Done():
			conn.CloseNow()
			return
		}
	}
	for _, frame := range script.Frames {
		if script.FrameDelay > 0 {
			select {
			case <-time.After(script.FrameDelay):
			case <-ctx.Done():
				conn.CloseNow()
				return
			}
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
			conn.CloseNow()
			return
		}
	}
	switch {
	case script.Drop:
		conn.CloseNow()
	case script.CloseCode != 0:
		_ = conn.Close(script.CloseCode, script.CloseReason)
	default:
		<-ctx.Done()
		conn.CloseNow()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
