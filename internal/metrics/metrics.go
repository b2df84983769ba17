package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tick metrics
	Ticks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_ticks_total",
			Help: "Total number of scheduler ticks executed",
		},
		[]string{"job", "status"}, // trending/alerts, success/error
	)

	TickDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendwatch_tick_duration_seconds",
			Help:    "Duration of one scheduler tick",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	// Market data API metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_api_requests_total",
			Help: "Total number of market data API requests",
		},
		[]string{"endpoint", "status"}, // pools/trades, success/error
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trendwatch_api_request_duration_seconds",
			Help:    "Duration of market data API requests including retries",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Snapshot lifecycle metrics
	SnapshotsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_snapshots_published_total",
			Help: "Total number of trending snapshots published",
		},
		[]string{"network", "status"}, // success/error
	)

	// Alert metrics
	AlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_alerts_sent_total",
			Help: "Total number of surge alerts sent",
		},
		[]string{"status", "type"}, // success/error, log/telegram
	)

	AlertsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trendwatch_alerts_suppressed_total",
			Help: "Total number of surge alerts suppressed by cooldown",
		},
	)

	// State persistence metrics
	StateSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_state_saves_total",
			Help: "Total number of state persistence attempts",
		},
		[]string{"status"}, // success/error
	)

	// System health
	HealthChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trendwatch_health_checks_total",
			Help: "Total number of health check requests",
		},
		[]string{"status"},
	)
)

// RecordTick records one scheduler tick
func RecordTick(job string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Ticks.WithLabelValues(job, status).Inc()
	TickDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordAPIRequest records a market data API request
func RecordAPIRequest(endpoint string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	APIRequests.WithLabelValues(endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordSnapshot records a snapshot publish attempt
func RecordSnapshot(network string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SnapshotsPublished.WithLabelValues(network, status).Inc()
}

// RecordAlert records an alert send attempt
func RecordAlert(alertType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AlertsSent.WithLabelValues(status, alertType).Inc()
}

// RecordStateSave records a state persistence attempt
func RecordStateSave(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StateSaves.WithLabelValues(status).Inc()
}

// RecordHealthCheck records health check status
func RecordHealthCheck(healthy bool) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	HealthChecks.WithLabelValues(status).Inc()
}
