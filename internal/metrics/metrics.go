package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const prefix = "landestate"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Login attempts by account kind and result",
		},
		[]string{"kind", "result"},
	)

	// Messaging metrics
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_messages_sent_total",
			Help: "Messages sent by sender kind",
		},
		[]string{"sender_kind"},
	)

	ConversationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_conversations_created_total",
			Help: "Conversations created",
		},
	)
)

// RecordLogin increments the login counter; result is success, not_found, bad_password or inactive
func RecordLogin(kind, result string) {
	LoginAttemptsTotal.WithLabelValues(kind, result).Inc()
}

// RecordMessageSent increments the message counter for the sender kind
func RecordMessageSent(senderKind string) {
	MessagesSentTotal.WithLabelValues(senderKind).Inc()
}
