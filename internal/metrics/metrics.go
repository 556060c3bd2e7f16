package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	// HTTPErrorsTotal tracks HTTP errors by error type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)

// Sentiment Classification Metrics
var (
	// ClassificationsTotal tracks classifications by path (remote/fallback)
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Total sentiment classifications by path (remote/fallback)",
		},
		[]string{"path"},
	)

	// ClassificationFailuresTotal tracks remote classification failures by reason
	ClassificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classification_failures_total",
			Help: "Remote classification failures that degraded to the fallback, by reason",
		},
		[]string{"reason"},
	)

	// ClassificationDuration tracks remote classification latency in seconds
	ClassificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_classification_duration_seconds",
			Help:    "Remote classification duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
	)
)

// Broadcast Hub Metrics
var (
	// HubConnectedClients tracks current number of connected WebSocket clients
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Current number of connected WebSocket clients",
		},
	)

	// HubBroadcastsTotal tracks total broadcast calls
	HubBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Total broadcast fan-out calls",
		},
	)

	// HubClientsEvicted tracks clients evicted due to send failure or full buffer
	HubClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_clients_evicted_total",
			Help: "Total WebSocket clients evicted due to send failure or full buffer",
		},
	)
)

// Post Metrics
var (
	// PostsCreatedTotal tracks created posts by source
	PostsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total posts created by source (user/reddit)",
		},
		[]string{"source"},
	)

	// ModerationRejectionsTotal tracks posts rejected by the moderation gate
	ModerationRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moderation_rejections_total",
			Help: "Total posts rejected by the moderation gate",
		},
	)
)

// Database Metrics
var (
	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)
