package metrics

import "github.com/prometheus/client_golang/prometheus"

type AppointmentMetrics struct {
	created       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	slotConflicts prometheus.Counter
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Appointment creation attempts by outcome",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "status_transitions_total",
			Help:      "Appointment status transitions",
		}, []string{"from", "to"}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "slot_conflicts_total",
			Help:      "Appointments rejected because a stylist slot was taken",
		}),
	}
	register(reg, m.created, m.transitions, m.slotConflicts)
	return m
}

func (m *AppointmentMetrics) ObserveCreated(err error) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(resultLabel(err)).Inc()
}

func (m *AppointmentMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *AppointmentMetrics) ObserveSlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}
