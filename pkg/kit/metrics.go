package kit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService = "service"
	labelOp      = "op"
	labelOutcome = "outcome"

	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

type Metrics struct {
	Ops     *prometheus.CounterVec
	Latency *prometheus.HistogramVec

	service string
}

func NewMetrics(reg prometheus.Registerer, service string) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Total catalog operations by outcome",
			},
			[]string{labelService, labelOp, labelOutcome},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "catalog_operation_duration_seconds",
				Help:    "Catalog operation latency",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
			[]string{labelService, labelOp},
		),
		service: service,
	}

	reg.MustRegister(m.Ops, m.Latency)
	return m
}

// Track starts timing op; the returned func records the outcome. Safe on a
// nil *Metrics.
func (m *Metrics) Track(op string) func(outcome string) {
	if m == nil {
		return func(string) {}
	}

	start := time.Now()
	return func(outcome string) {
		m.Latency.WithLabelValues(m.service, op).Observe(time.Since(start).Seconds())
		m.Ops.WithLabelValues(m.service, op, outcome).Inc()
	}
}

// WriteMetrics dumps g in the text exposition format, for node_exporter's
// textfile collector.
func WriteMetrics(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
