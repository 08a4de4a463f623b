package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Document store metrics
	mongoOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mongo_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"operation", "collection"},
	)

	// Scheduling domain metrics
	appointmentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of appointments created",
		},
	)

	slotConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slot_conflicts_total",
			Help: "Total number of scheduling writes rejected by the conflict check",
		},
	)

	confirmationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmation_attempts_total",
			Help: "Total number of patient confirmation attempts recorded",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		mongoOperationDuration,
		appointmentsCreatedTotal,
		slotConflictsTotal,
		confirmationAttemptsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records metrics for a completed HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TimeMongoOperation returns a function that records the operation duration
// when called. Intended for use with defer in repositories.
func TimeMongoOperation(operation, collection string) func() {
	start := time.Now()
	return func() {
		mongoOperationDuration.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
	}
}

// RecordAppointmentCreated increments the appointment creation counter
func RecordAppointmentCreated() {
	appointmentsCreatedTotal.Inc()
}

// RecordSlotConflict increments the rejected-write counter
func RecordSlotConflict() {
	slotConflictsTotal.Inc()
}

// RecordConfirmationAttempt increments the confirmation attempt counter
func RecordConfirmationAttempt(status string) {
	confirmationAttemptsTotal.WithLabelValues(status).Inc()
}
