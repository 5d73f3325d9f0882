package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "threadwatch"

// Recorder counts monitor session activity. It satisfies the monitor
// package's Recorder interface.
type Recorder struct {
	registry *prometheus.Registry

	sessionsStarted  prometheus.Counter
	sessionsFinished *prometheus.CounterVec
	sessionDuration  *prometheus.HistogramVec
	eventsApplied    *prometheus.CounterVec
	framesDropped    prometheus.Counter
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Monitor sessions started.",
		}),
		sessionsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Monitor sessions that ended, by outcome.",
		}, []string{"outcome"}),
		sessionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Time from start to the end of a monitor session.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600},
		}, []string{"outcome"}),
		eventsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_events_total",
			Help:      "Progress events applied to a session, by kind.",
		}, []string{"kind"}),
		framesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Stream frames discarded because they could not be decoded.",
		}),
	}
}

func (r *Recorder) SessionStarted() {
	r.sessionsStarted.Inc()
}

func (r *Recorder) SessionFinished(outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	r.sessionsFinished.WithLabelValues(outcome).Inc()
	r.sessionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (r *Recorder) EventApplied(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	r.eventsApplied.WithLabelValues(kind).Inc()
}

func (r *Recorder) FrameDropped() {
	r.framesDropped.Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
