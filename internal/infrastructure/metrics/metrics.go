package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Moderation-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Verdict counters per media type, status and provider
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "verdicts_total",
			Help:      "Total moderation verdicts recorded",
		},
		[]string{"media_type", "status", "provider"},
	)

	// Storage operations counter
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "storage_operations_total",
			Help:      "Total storage operations",
		},
		[]string{"operation", "status"},
	)

	// Storage operation duration
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "storage_duration_seconds",
			Help:      "Storage operation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	// Policy webhook calls counter
	WebhookCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "webhook_calls_total",
			Help:      "Total policy webhook calls",
		},
		[]string{"outcome"},
	)

	// Policy webhook call duration
	WebhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shadefast",
			Subsystem: "moderation_api",
			Name:      "webhook_duration_seconds",
			Help:      "Policy webhook call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordVerdict records a persisted moderation verdict
func RecordVerdict(mediaType, status, provider string) {
	VerdictsTotal.WithLabelValues(mediaType, status, provider).Inc()
}

// RecordStorageOperation records a storage backend operation
func RecordStorageOperation(operation, status string, durationSec float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordWebhookCall records a policy webhook call
func RecordWebhookCall(outcome string, durationSec float64) {
	WebhookCallsTotal.WithLabelValues(outcome).Inc()
	WebhookDuration.Observe(durationSec)
}
