package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		classifierLatencyMs,
		classifierFailures,
	)
}

var (
	classifierLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_calls_latency_ms",
			Help:    "Intent classifier call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)

	classifierFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_failures_total",
			Help: "Classifier calls collapsed to unavailable, by provider.",
		},
		[]string{"provider"},
	)
)

func ObserveClassify(provider string, latencyMs int, success bool) {
	classifierLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
	if !success {
		classifierFailures.WithLabelValues(norm(provider)).Inc()
	}
}
