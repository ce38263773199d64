package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
// New registers with the default registry, so it must be called once per process.
type Recorder struct {
	ticks     *prometheus.CounterVec
	evictions *prometheus.CounterVec
	errors    *prometheus.CounterVec
	cursor    prometheus.Gauge
	length    prometheus.Gauge
	latency   *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powercast_replay_points_total",
				Help: "Data points appended to a chart by the replay loop",
			},
			[]string{"chart"},
		),
		evictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powercast_replay_evictions_total",
				Help: "Oldest points evicted from a chart window",
			},
			[]string{"chart"},
		),
		errors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powercast_errors_total",
				Help: "Errors by kind (network, data_shape, upstream, ...)",
			},
			[]string{"kind"},
		),
		cursor: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "powercast_replay_cursor",
			Help: "Index of the next point to replay",
		}),
		length: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "powercast_replay_length",
			Help: "Number of points in the loaded series",
		}),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "powercast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTick(chart string) {
	r.ticks.WithLabelValues(chart).Inc()
}

func (r *Recorder) RecordEviction(chart string) {
	r.evictions.WithLabelValues(chart).Inc()
}

// RecordCursor publishes replay progress.
func (r *Recorder) RecordCursor(cursor, length int) {
	r.cursor.Set(float64(cursor))
	r.length.Set(float64(length))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything; used in tests and when metrics are disabled.
type Nop struct{}

func (Nop) RecordTick(string) {}
func (Nop) RecordEviction(string) {}
func (Nop) RecordCursor(int, int) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLatency(string, float64) {}
