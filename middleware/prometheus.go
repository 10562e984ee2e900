package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	tokenValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_validation_failures_total",
		Help: "Rejected bearer tokens by reason.",
	}, []string{"reason"})

	rosterChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_roster_changes_total",
		Help: "Participate/leave attempts by operation and outcome.",
	}, []string{"operation", "outcome"})
)

// PrometheusMiddleware records request count and latency per matched route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordTokenRejection counts a bearer token rejected for reason.
func RecordTokenRejection(reason string) {
	tokenValidationFailures.WithLabelValues(reason).Inc()
}

// RecordRosterChange counts a roster operation and its outcome.
func RecordRosterChange(operation, outcome string) {
	rosterChanges.WithLabelValues(operation, outcome).Inc()
}
