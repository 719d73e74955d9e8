// Package observability exposes Prometheus metrics for the outbound
// webhook pipeline and the AI analysis workers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookDeliveriesTotal counts delivery attempts by event type and outcome
	WebhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts",
		},
		[]string{"event_type", "outcome"},
	)

	// WebhookDeliveryDuration tracks end-to-end delivery latency
	WebhookDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_delivery_duration_seconds",
			Help:    "Duration of webhook deliveries in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"event_type"},
	)

	// WebhookEventsEnqueued counts events entering the dispatch queue
	WebhookEventsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_enqueued_total",
			Help: "Total number of events enqueued for webhook dispatch",
		},
		[]string{"event_type"},
	)

	// WebhookQueueDepth reports pending events observed on the last poll
	WebhookQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webhook_queue_depth",
			Help: "Number of pending events in the webhook queue",
		},
	)

	// WebhookEventsExhausted counts events that ran out of attempts
	WebhookEventsExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_events_exhausted_total",
			Help: "Total number of webhook events that exhausted all attempts",
		},
	)

	// AnalysisJobsTotal counts analysis jobs by type and outcome
	AnalysisJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_jobs_total",
			Help: "Total number of AI analysis jobs processed",
		},
		[]string{"job_type", "outcome"},
	)

	// CreditsConsumedTotal counts subscription credits consumed
	CreditsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_credits_consumed_total",
			Help: "Total number of subscription credits consumed",
		},
	)
)

// RecordDelivery records one delivery attempt
func RecordDelivery(eventType string, success bool, duration time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	WebhookDeliveriesTotal.WithLabelValues(eventType, outcome).Inc()
	WebhookDeliveryDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}
