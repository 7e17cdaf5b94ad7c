// Package metrics holds the Prometheus collectors shared by the ingest API and the worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	// EventsIngested counts ingest calls by outcome (created, deduped, rejected).
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cs_events_ingested_total",
			Help: "Chat events received by the ingest API",
		},
		[]string{"outcome"},
	)

	// EventsProcessed counts claimed events by final status.
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cs_events_processed_total",
			Help: "Claimed events by final ingest status",
		},
		[]string{"status"},
	)

	// ClaimBatchSize tracks how many events each claim pass picked up.
	ClaimBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cs_claim_batch_size",
			Help:    "Events claimed per worker cycle",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	// ClassificationDuration tracks classifier latency by tier.
	ClassificationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cs_classification_duration_seconds",
			Help:    "Classification latency by tier",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
		},
		[]string{"tier"},
	)

	// Classifications counts classification results by tier and outcome.
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cs_classifications_total",
			Help: "Classification results by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// AlertsSent counts webhook alert attempts.
	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cs_alerts_total",
			Help: "Webhook alert attempts by kind and delivery result",
		},
		[]string{"kind", "delivered"},
	)

	// BreakerState exposes circuit breaker state (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cs_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	// StaleClaimsReleased counts events returned to received by the reclaimer.
	StaleClaimsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cs_stale_claims_released_total",
			Help: "Events stuck in processing that were released back to received",
		},
	)
)

// RecordClassification records latency and outcome for one classifier call.
func RecordClassification(tier, outcome string, seconds float64) {
	ClassificationDuration.WithLabelValues(tier).Observe(seconds)
	Classifications.WithLabelValues(tier, outcome).Inc()
}

// RecordAlert records one webhook attempt.
func RecordAlert(kind string, delivered bool) {
	label := "false"
	if delivered {
		label = "true"
	}
	AlertsSent.WithLabelValues(kind, label).Inc()
}

// RecordBreakerState publishes a circuit breaker transition.
func RecordBreakerState(name string, s gobreaker.State) {
	v := 0.0
	switch s {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	BreakerState.WithLabelValues(name).Set(v)
}
