package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// slowRequestThreshold marks a request as slow
const slowRequestThreshold = time.Second

var (
	// Queue counters
	QueueJoined = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_joins_total",
			Help: "Total number of tickets issued",
		},
		[]string{"service_id"},
	)

	QueueLeft = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_leaves_total",
			Help: "Total number of tickets cleared, by reason",
		},
		[]string{"service_id", "reason"},
	)

	QueueTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_ticks_total",
			Help: "Total number of simulated position updates",
		},
		[]string{"service_id"},
	)

	QueueCrossings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_threshold_crossings_total",
			Help: "Total number of coming-soon and your-turn crossings",
		},
		[]string{"service_id", "crossing"},
	)

	NotificationsPushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_notifications_total",
			Help: "Total number of notifications pushed",
		},
	)

	// Admin counters
	AdminOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_admin_operations_total",
			Help: "Total admin queue operations",
		},
		[]string{"operation", "service_id"},
	)

	// Event stream
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_events_published_total",
			Help: "Total events handed to the event publisher",
		},
		[]string{"event_type", "status"},
	)

	// Errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"error_type", "operation"},
	)

	SlowRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_slow_requests_total",
			Help: "Total number of slow requests (>1s)",
		},
		[]string{"operation"},
	)

	// Histograms
	QueueWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_wait_time_seconds",
			Help:    "Time a ticket was held before it was cleared",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // 1s to 10min
		},
		[]string{"service_id"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // 5ms to 10s
		},
		[]string{"operation", "status"},
	)

	// Gauges
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_active_sessions",
			Help: "Current number of signed-in sessions",
		},
	)

	ActiveTickets = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_active_tickets",
			Help: "Current number of live tickets per service",
		},
		[]string{"service_id"},
	)

	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_stream_subscribers",
			Help: "Current number of open snapshot streams",
		},
	)
)

// RecordQueueJoin records a ticket being issued
func RecordQueueJoin(serviceID string) {
	QueueJoined.WithLabelValues(serviceID).Inc()
	ActiveTickets.WithLabelValues(serviceID).Inc()
}

// RecordQueueLeave records a ticket being cleared
func RecordQueueLeave(serviceID, reason string, held time.Duration) {
	QueueLeft.WithLabelValues(serviceID, reason).Inc()
	QueueWaitTime.WithLabelValues(serviceID).Observe(held.Seconds())
	ActiveTickets.WithLabelValues(serviceID).Dec()
}

// RecordTick records a simulated position update and its crossings
func RecordTick(serviceID string, crossings ...string) {
	QueueTicks.WithLabelValues(serviceID).Inc()
	for _, c := range crossings {
		QueueCrossings.WithLabelValues(serviceID, c).Inc()
	}
}

// RecordNotification records a pushed notification
func RecordNotification() {
	NotificationsPushed.Inc()
}

// RecordAdminOperation records a call-next or skip
func RecordAdminOperation(operation, serviceID string) {
	AdminOperations.WithLabelValues(operation, serviceID).Inc()
}

// RecordEventPublished records the outcome of an event publish
func RecordEventPublished(eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	EventsPublished.WithLabelValues(eventType, status).Inc()
}

// RecordError records an error by type and operation
func RecordError(errorType, operation string) {
	ErrorsTotal.WithLabelValues(errorType, operation).Inc()
}

// RecordRequestDuration records HTTP request duration and tracks slow requests
func RecordRequestDuration(operation, status string, d time.Duration) {
	RequestDuration.WithLabelValues(operation, status).Observe(d.Seconds())
	if d > slowRequestThreshold {
		SlowRequestsTotal.WithLabelValues(operation).Inc()
	}
}

// Middleware records request duration per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		operation := c.FullPath()
		if operation == "" {
			operation = "unmatched"
		}
		RecordRequestDuration(c.Request.Method+" "+operation, statusClass(c.Writer.Status()), time.Since(start))
	}
}

// Handler serves the Prometheus exposition format
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func statusClass(code int) string {
	switch {
	case code >= http.StatusInternalServerError:
		return "5xx"
	case code >= http.StatusBadRequest:
		return "4xx"
	case code >= http.StatusMultipleChoices:
		return "3xx"
	default:
		return "2xx"
	}
}
