package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_connections_active",
			Help: "Currently open WebSocket connections",
		},
	)

	ConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_connections_total",
			Help: "Total WebSocket connections accepted",
		},
	)

	// Relay metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_events_published_total",
			Help: "Events published to broadcast groups",
		},
		[]string{"type"}, // chat_message, private_message, user_join, user_leave
	)

	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_deliveries_dropped_total",
			Help: "Deliveries dropped because a subscriber buffer was full",
		},
	)

	// Persistence metrics
	MessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_persisted_total",
			Help: "Messages appended to the store",
		},
	)

	PersistenceFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_persistence_failures_total",
			Help: "Message store appends that failed",
		},
	)
)
