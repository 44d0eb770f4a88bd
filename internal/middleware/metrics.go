package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by method, endpoint and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration observes HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight tracks requests currently being served.
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// TripEventsTotal counts lifecycle outcomes: created, accepted,
	// finished, canceled, expired.
	TripEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_trip_events_total",
			Help: "Total number of trip lifecycle events",
		},
		[]string{"event"},
	)

	// SettlementsTotal counts applied settlements.
	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_settlements_total",
			Help: "Total number of applied trip settlements",
		},
	)
)

// PrometheusMiddleware collects HTTP metrics for every request.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// TrackTripEvent records one trip lifecycle outcome.
func TrackTripEvent(event string) {
	TripEventsTotal.WithLabelValues(event).Inc()
}
