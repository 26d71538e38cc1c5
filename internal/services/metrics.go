// Package services – fulfillment instrumentation.
//
// Domain-level Prometheus collectors for the certificate pipeline. Labels are
// kept low-cardinality: channel is one of email/sms/none and outcome is
// ok/error, so the series count stays bounded regardless of traffic.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// fulfillments counts completed pipeline runs by channel and outcome.
	fulfillments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_fulfillments_total",
			Help: "Total number of certificate fulfillment runs.",
		},
		[]string{"channel", "outcome"},
	)

	// renderSeconds records how long PDF rendering takes.
	renderSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "certificate_render_duration_seconds",
			Help:    "Duration of certificate PDF rendering in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// artifactReuses counts runs that skipped rendering because the stored
	// artifact was still present.
	artifactReuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificate_artifact_reuses_total",
			Help: "Total number of fulfillment runs that reused a stored artifact.",
		},
	)

	// deliveryFailures counts notification failures by channel and step.
	deliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificate_delivery_failures_total",
			Help: "Total number of failed certificate deliveries.",
		},
		[]string{"channel", "step"},
	)
)

func init() {
	prometheus.MustRegister(fulfillments, renderSeconds, artifactReuses, deliveryFailures)
}

// observeOutcome records the final outcome of a pipeline run.
func observeOutcome(channel string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	fulfillments.WithLabelValues(channel, outcome).Inc()
}
