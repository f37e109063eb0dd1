package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for the URL counter.
const (
	outcomeSucceeded = "succeeded"
	outcomeEmpty     = "empty"
	outcomeFailed    = "failed"
)

// Metrics holds the Prometheus collectors updated by a Processor.
type Metrics struct {
	URLs          *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	SinkFailures  prometheus.Counter
}

// NewMetrics creates batch collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		URLs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prodner_batch_urls_total",
				Help: "URLs processed by batch runs, by outcome.",
			},
			[]string{"outcome"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prodner_batch_fetch_duration_seconds",
				Help:    "Time spent fetching a URL, retries included.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SinkFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "prodner_batch_sink_failures_total",
				Help: "Pages that could not be saved to the page sink.",
			},
		),
	}
}
