package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestBookingMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveSessionStarted()
	m.ObserveOperation("toggle_service", nil)
	m.ObserveOperation("assign_stylist", errors.New("boom"))
	m.ObserveCommit(nil, 0.2)
	m.ObserveCommit(errors.New("sink down"), 0.4)

	if got := counterValue(t, m.sessionsStarted); got != 1 {
		t.Errorf("expected 1 session started, got %v", got)
	}
	if got := counterValue(t, m.operations.WithLabelValues("assign_stylist", "error")); got != 1 {
		t.Errorf("expected 1 failed assign_stylist, got %v", got)
	}
	if got := counterValue(t, m.commits.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful commit, got %v", got)
	}
}

func TestAppointmentMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAppointmentMetrics(reg)

	m.ObserveCreated(nil)
	m.ObserveTransition("pending", "confirmed")
	m.ObserveSlotConflict()

	if got := counterValue(t, m.transitions.WithLabelValues("pending", "confirmed")); got != 1 {
		t.Errorf("expected 1 transition, got %v", got)
	}
	if got := counterValue(t, m.slotConflicts); got != 1 {
		t.Errorf("expected 1 slot conflict, got %v", got)
	}
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := counterValue(t, m.requests.WithLabelValues("GET", "418")); got != 1 {
		t.Errorf("expected 1 request recorded, got %v", got)
	}
}

func TestKafkaMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewKafkaMetrics(reg)

	m.ObservePublish("appointments.events", nil, 0.01)
	m.ObserveConsume("appointments.events", errors.New("bad"), 0.02)

	if got := counterValue(t, m.consumed.WithLabelValues("appointments.events", "error")); got != 1 {
		t.Errorf("expected 1 failed consume, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var b *BookingMetrics
	b.ObserveSessionStarted()
	b.ObserveOperation("op", nil)
	b.ObserveCommit(nil, 0)

	var a *AppointmentMetrics
	a.ObserveCreated(nil)
	a.ObserveTransition("a", "b")
	a.ObserveSlotConflict()

	var k *KafkaMetrics
	k.ObservePublish("t", nil, 0)
	k.ObserveConsume("t", nil, 0)

	var h *HTTPMetrics
	h.ObserveRequest("GET", 200, time.Millisecond)
	if h.Middleware(http.NotFoundHandler()) == nil {
		t.Error("expected nil metrics middleware to return next handler")
	}
}
