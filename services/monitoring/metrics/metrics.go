package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wesplit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LinkResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_link_resolutions_total",
			Help: "Total number of payment link resolutions",
		},
		[]string{"kind", "outcome"},
	)

	LedgerEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_ledger_events_total",
			Help: "Total number of ledger events applied to shared wallets",
		},
		[]string{"kind"},
	)

	LedgerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_ledger_rejections_total",
			Help: "Total number of ledger events rejected by invariant checks",
		},
		[]string{"reason"},
	)

	GuardRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_guard_rejections_total",
			Help: "Total number of actions deduplicated while already in flight",
		},
		[]string{"action"},
	)

	GroupJoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_group_joins_total",
			Help: "Total number of group joins by invite link",
		},
		[]string{"status"},
	)

	PushNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_push_notifications_total",
			Help: "Total number of push notifications sent",
		},
		[]string{"channel", "status"},
	)

	ReceiptAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wesplit_receipt_analyses_total",
			Help: "Total number of receipt analyses requested",
		},
		[]string{"status"},
	)

	ActiveWebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wesplit_active_websocket_clients",
			Help: "Number of websocket clients currently connected",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLinkResolution(kind, outcome string) {
	LinkResolutionsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordLedgerEvent(kind string) {
	LedgerEventsTotal.WithLabelValues(kind).Inc()
}

func RecordLedgerRejection(reason string) {
	LedgerRejectionsTotal.WithLabelValues(reason).Inc()
}

func RecordGuardRejection(action string) {
	GuardRejectionsTotal.WithLabelValues(action).Inc()
}

func RecordGroupJoin(status string) {
	GroupJoinsTotal.WithLabelValues(status).Inc()
}

func RecordPushNotification(channel, status string) {
	PushNotificationsTotal.WithLabelValues(channel, status).Inc()
}

func RecordReceiptAnalysis(status string) {
	ReceiptAnalysesTotal.WithLabelValues(status).Inc()
}
