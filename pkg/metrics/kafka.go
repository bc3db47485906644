package metrics

import "github.com/prometheus/client_golang/prometheus"

type KafkaMetrics struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func NewKafkaMetrics(reg prometheus.Registerer) *KafkaMetrics {
	m := &KafkaMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "published_total",
			Help:      "Kafka messages published by topic and outcome",
		}, []string{"topic", "result"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "consumed_total",
			Help:      "Kafka messages consumed by topic and outcome",
		}, []string{"topic", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "operation_duration_seconds",
			Help:      "Duration of publish and consume operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	register(reg, m.published, m.consumed, m.duration)
	return m
}

func (m *KafkaMetrics) ObservePublish(topic string, err error, seconds float64) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(topic, resultLabel(err)).Inc()
	m.duration.WithLabelValues("publish").Observe(seconds)
}

func (m *KafkaMetrics) ObserveConsume(topic string, err error, seconds float64) {
	if m == nil {
		return
	}
	m.consumed.WithLabelValues(topic, resultLabel(err)).Inc()
	m.duration.WithLabelValues("consume").Observe(seconds)
}
