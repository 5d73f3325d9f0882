package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.SessionStarted()
	r.SessionStarted()
	r.EventApplied("status")
	r.EventApplied("status")
	r.EventApplied("completed")
	r.EventApplied("")
	r.FrameDropped()
	r.SessionFinished("completed", 3*time.Second)
	r.SessionFinished("", time.Second)

	if got := testutil.ToFloat64(r.sessionsStarted); got != 2 {
		t.Fatalf("sessions started = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.eventsApplied.WithLabelValues("status")); got != 2 {
		t.Fatalf("status events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.eventsApplied.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.framesDropped); got != 1 {
		t.Fatalf("frames dropped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.sessionsFinished.WithLabelValues("completed")); got != 1 {
		t.Fatalf("completed sessions = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.sessionDuration); got != 2 {
		t.Fatalf("duration series = %d, want 2", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.FrameDropped()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "threadwatch_frames_dropped_total 1") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
