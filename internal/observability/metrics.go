package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	requestsTotal           *prometheus.CounterVec
	requestLatencySeconds   *prometheus.HistogramVec
	lifecycleTransitions    *prometheus.CounterVec
	notificationsDispatched *prometheus.CounterVec
	notificationFailures    *prometheus.CounterVec
	rankingComputeSeconds   prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rubrica_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rubrica_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		lifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rubrica_lifecycle_transitions_total",
			Help: "Total number of evaluation lifecycle transitions applied.",
		}, []string{"entity", "status"})

		notificationsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rubrica_notifications_dispatched_total",
			Help: "Total number of lifecycle notifications written, by type.",
		}, []string{"type"})

		notificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rubrica_notification_failures_total",
			Help: "Total number of swallowed notification dispatch failures.",
		}, []string{"type"})

		rankingComputeSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rubrica_ranking_compute_seconds",
			Help:    "Time spent computing the group leaderboard from the store.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			lifecycleTransitions,
			notificationsDispatched,
			notificationFailures,
			rankingComputeSeconds,
		)
	})
}

// Requests exposes the counter for served requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for served requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// LifecycleTransitions exposes the counter for lifecycle transitions.
func LifecycleTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return lifecycleTransitions
}

// NotificationsDispatched exposes the counter for dispatched notifications.
func NotificationsDispatched() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsDispatched
}

// NotificationFailures exposes the counter for swallowed dispatch failures.
func NotificationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationFailures
}

// RankingComputeSeconds exposes the leaderboard computation histogram.
func RankingComputeSeconds() prometheus.Histogram {
	RegisterMetrics()
	return rankingComputeSeconds
}
