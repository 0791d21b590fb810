package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumart_http_requests_total",
			Help: "Total number of HTTP requests processed, partitioned by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edumart_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edumart_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edumart_db_query_duration_seconds",
			Help:    "Database query latency distribution, partitioned by operation and table.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation", "table"},
	)

	videoBytesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumart_video_bytes_served_total",
			Help: "Total video bytes written to clients, partitioned by response kind (full or partial).",
		},
		[]string{"kind"},
	)
)

// Middleware collects request counts, latencies and in-flight gauge per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		c.Next()

		httpRequestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordDBQuery records a database query duration for the given operation and table.
func RecordDBQuery(operation, table string, elapsed time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
}

// RecordVideoBytesServed adds the number of video bytes written for a full (200)
// or partial (206) response.
func RecordVideoBytesServed(kind string, bytes int64) {
	videoBytesServed.WithLabelValues(kind).Add(float64(bytes))
}
