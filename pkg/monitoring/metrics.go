package monitoring

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the adspace inventory service
var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Item store metrics
	ItemStoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "item_store_op_duration_seconds",
			Help:    "Item store operation execution time",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"op", "table"},
	)

	ItemStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_store_errors_total",
			Help: "Total number of item store errors",
		},
		[]string{"op", "table"},
	)

	// Blob store metrics
	BlobUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blob_uploads_total",
			Help: "Total number of blob store uploads",
		},
		[]string{"backend", "status"},
	)

	// Business metrics
	AdSpacesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adspaces_created_total",
			Help: "Total number of adspaces created",
		},
	)

	AdsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ads_created_total",
			Help: "Total number of ads created",
		},
	)

	CascadeDeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_deletes_total",
			Help: "Total number of adspace cascade deletes by outcome",
		},
		[]string{"outcome"},
	)
)

// MetricsMiddleware creates a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		normalizedPath := normalizePath(path)

		HTTPRequestsTotal.WithLabelValues(method, normalizedPath, status).Inc()
		HTTPRequestDuration.WithLabelValues(method, normalizedPath, status).Observe(duration)
	}
}

// normalizePath reduces cardinality by collapsing path parameters
func normalizePath(path string) string {
	switch path {
	case "/", "/health", "/ready", "/metrics", "/api/adspace":
		return path
	}

	if strings.HasPrefix(path, "/api/adspace/") {
		rest := strings.TrimPrefix(path, "/api/adspace/")
		parts := strings.Split(rest, "/")
		switch {
		case len(parts) == 1:
			return "/api/adspace/{id}"
		case len(parts) == 2 && parts[1] == "ad":
			return "/api/adspace/{id}/ad"
		case len(parts) == 3 && parts[1] == "ad" && parts[2] == "random":
			return "/api/adspace/{id}/ad/random"
		case len(parts) == 3 && parts[1] == "ad":
			return "/api/adspace/{id}/ad/{ad_id}"
		}
	}

	return "/other"
}

// PrometheusHandler returns the Prometheus metrics handler
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// RecordItemStoreOp records item store operation metrics
func RecordItemStoreOp(op, table string, duration time.Duration, err error) {
	ItemStoreOpDuration.WithLabelValues(op, table).Observe(duration.Seconds())
	if err != nil {
		ItemStoreErrorsTotal.WithLabelValues(op, table).Inc()
	}
}

// RecordBlobUpload records a blob upload attempt
func RecordBlobUpload(backend string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BlobUploadsTotal.WithLabelValues(backend, status).Inc()
}

// RecordAdSpaceCreated records when a new adspace is created
func RecordAdSpaceCreated() {
	AdSpacesCreatedTotal.Inc()
}

// RecordAdCreated records when a new ad is created
func RecordAdCreated() {
	AdsCreatedTotal.Inc()
}

// RecordCascadeDelete records the outcome of an adspace cascade delete
func RecordCascadeDelete(outcome string) {
	CascadeDeletesTotal.WithLabelValues(outcome).Inc()
}
