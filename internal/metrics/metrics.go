package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	ChatRequests     *prometheus.CounterVec
	AIRequests       *prometheus.CounterVec
	AILatency        *prometheus.HistogramVec
	LeadsCaptured    prometheus.Counter
	PaymentCallbacks *prometheus.CounterVec
	WebhookMessages  *prometheus.CounterVec
	OutboundMessages *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_requests_total",
				Help:      "Total chat turns by outcome.",
			}, []string{"status"}),
			AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Total completion-provider requests by provider and outcome.",
			}, []string{"provider", "status"}),
			AILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "Latency distribution for completion-provider calls.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"provider"}),
			LeadsCaptured: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "leads_captured_total",
				Help:      "Total leads persisted from chat replies.",
			}),
			PaymentCallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_callbacks_total",
				Help:      "Total payment-gateway notifications by provider and status.",
			}, []string{"provider", "status"}),
			WebhookMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_messages_total",
				Help:      "Total inbound channel messages by type.",
			}, []string{"type"}),
			OutboundMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbound_messages_total",
				Help:      "Total outbound channel sends by outcome.",
			}, []string{"status"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.ChatRequests,
			metricsInstance.AIRequests,
			metricsInstance.AILatency,
			metricsInstance.LeadsCaptured,
			metricsInstance.PaymentCallbacks,
			metricsInstance.WebhookMessages,
			metricsInstance.OutboundMessages,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}
