// Package metrics holds the Prometheus collectors shared by the salonbook services.
// Every Observe method is safe on a nil receiver so callers may run without metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "salonbook"

func register(reg prometheus.Registerer, cs ...prometheus.Collector) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cs...)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
