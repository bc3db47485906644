package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics tracks the booking flow.
type BookingMetrics struct {
	sessionsStarted prometheus.Counter
	operations      *prometheus.CounterVec
	commits         *prometheus.CounterVec
	commitLatency   prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "sessions_started_total",
			Help:      "Booking sessions started",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Workflow operations by outcome",
		}, []string{"operation", "result"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Commit attempts by outcome",
		}, []string{"result"}),
		commitLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "commit_latency_seconds",
			Help:      "Latency of commit including the appointment submission",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	register(reg, m.sessionsStarted, m.operations, m.commits, m.commitLatency)
	return m
}

func (m *BookingMetrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *BookingMetrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, resultLabel(err)).Inc()
}

func (m *BookingMetrics) ObserveCommit(err error, seconds float64) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(resultLabel(err)).Inc()
	m.commitLatency.Observe(seconds)
}
