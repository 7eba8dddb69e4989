package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawembed",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "drawembed",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawembed",
			Subsystem: "session",
			Name:      "events_received_total",
			Help:      "Frame events accepted by a channel.",
		},
		[]string{"event"},
	)
	sessionDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawembed",
			Subsystem: "session",
			Name:      "events_dropped_total",
			Help:      "Frame messages dropped before dispatch.",
		},
		[]string{"reason"},
	)
	sessionActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawembed",
			Subsystem: "session",
			Name:      "actions_sent_total",
			Help:      "Actions posted to the frame.",
		},
		[]string{"action", "success"},
	)
	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drawembed",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Channel lifecycle transitions.",
		},
		[]string{"from", "to"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drawembed",
			Subsystem: "relay",
			Name:      "active_sessions",
			Help:      "Relay sessions that are not closed.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			sessionEvents, sessionDropped, sessionActions, sessionTransitions,
			activeSessions,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordEventReceived(event string) {
	RegisterMetrics()
	sessionEvents.WithLabelValues(event).Inc()
}

func RecordEventDropped(reason string) {
	RegisterMetrics()
	sessionDropped.WithLabelValues(reason).Inc()
}

func RecordActionSent(action string, success bool) {
	RegisterMetrics()
	sessionActions.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

func RecordTransition(from, to string) {
	RegisterMetrics()
	sessionTransitions.WithLabelValues(from, to).Inc()
}

func SetActiveSessions(n int) {
	RegisterMetrics()
	activeSessions.Set(float64(n))
}

// SessionObserver records channel activity in the session metrics.
type SessionObserver struct{}

func (SessionObserver) EventReceived(kind string)       { RecordEventReceived(kind) }
func (SessionObserver) EventDropped(reason string)      { RecordEventDropped(reason) }
func (SessionObserver) ActionSent(kind string, ok bool) { RecordActionSent(kind, ok) }
func (SessionObserver) Transition(from, to string)      { RecordTransition(from, to) }
