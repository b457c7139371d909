package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inbound webhooks
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Inbound webhook deliveries by provider and processing status",
		},
		[]string{"provider", "status"}, // status: processed|failed|rejected
	)

	// Reconciliation outcomes
	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Reconciliation outcomes by transaction transition",
		},
		[]string{"outcome"}, // applied|duplicate|ignored|noop
	)

	RefundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "refunds_total",
			Help: "Wallet refunds issued for failed spend transactions",
		},
	)

	// Notification fan-out
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification channel attempts by channel and result",
		},
		[]string{"channel", "result"}, // result: ok|error
	)

	// Fan-out worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current notification worker queue depth",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

// Init registers all collectors. Call once at startup.
func Init() {
	prometheus.MustRegister(WebhookEventsTotal)
	prometheus.MustRegister(ReconciliationsTotal)
	prometheus.MustRegister(RefundsTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(WorkerQueueDepth)
}
