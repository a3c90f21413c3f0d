// Package metrics provides Prometheus metrics for the panel endpoints.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the dispatch metrics.
type Collector struct {
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	DispatchInFlight prometheus.Gauge
}

// New creates a collector with all metrics registered on the default
// registerer.
func New() *Collector {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on a specific registerer, which keeps
// tests isolated from the process default.
func NewWith(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		DispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flyouts",
				Name:      "dispatch_total",
				Help:      "Total dispatched panel operations",
			},
			[]string{"operation", "code"},
		),
		DispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flyouts",
				Name:      "dispatch_duration_seconds",
				Help:      "Panel operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		DispatchInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "flyouts",
				Name:      "dispatch_in_flight",
				Help:      "Panel operations currently being processed",
			},
		),
	}
}

// Observe records one finished operation. Code is "ok" on success or the
// stable failure code.
func (c *Collector) Observe(operation, code string, seconds float64) {
	if c == nil {
		return
	}
	c.DispatchTotal.WithLabelValues(operation, code).Inc()
	c.DispatchDuration.WithLabelValues(operation).Observe(seconds)
}
