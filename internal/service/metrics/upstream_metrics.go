package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "powercast",
			Subsystem: "predictor",
			Name:      "latency_seconds",
			Help:      "Latency of calls to the prediction service",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "powercast",
			Subsystem: "predictor",
			Name:      "errors_total",
			Help:      "Failed prediction service calls by endpoint and error kind",
		},
		[]string{"endpoint", "kind"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "powercast",
			Subsystem: "predictor",
			Name:      "cache_lookups_total",
			Help:      "Payload cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Register registers the collectors with the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(UpstreamLatency, UpstreamErrors, CacheLookups)
	})
}
