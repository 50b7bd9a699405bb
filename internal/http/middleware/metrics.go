// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file exposes Prometheus instrumentation for HTTP traffic. Metrics()
// measures request counts, latencies, in-flight concurrency and response
// sizes; ErrorResponder feeds http_error_responses_total. Handlers report
// search and ingest volume through ObserveSearchHits and CountDocumentsAdded.
//
// Labels:
//   - method: HTTP method verb
//   - path:   the registered Gin route (e.g. /api/v1/indexes/:index/search),
//     or "unmatched" when no route matched
//   - status: numeric status code as a string
//   - kind:   error kind name (bad_request, abort, other, ...) or "unrecognized"
//   - replayed: "true" when documents came from a stored idempotent outcome
//
// Index names are deliberately not labels; they are client-chosen.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts requests by method, route path, and status code.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// httpLat records request duration in seconds by method and route path.
	// We intentionally omit status to keep latency histogram cardinality lower.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets, // suitable for general HTTP latency
		},
		[]string{"method", "path"},
	)

	// httpInflight gauges the number of in-flight (currently processing) requests.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// httpErrResp counts error responses produced from handler errors, by
	// error kind and final status.
	httpErrResp = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_error_responses_total",
			Help: "Total number of error responses produced from handler errors.",
		},
		[]string{"kind", "status"},
	)

	// httpRespSize captures response sizes in bytes by method and route path.
	// Buckets are tuned for typical JSON API payload sizes.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10, // 200B..5KiB
				10 << 10, 25 << 10, 50 << 10, // 10..50KiB
				100 << 10, 250 << 10, 500 << 10, // 100..500KiB
				1 << 20, 2 << 20, 5 << 20, // 1..5MiB
			},
		},
		[]string{"method", "path"},
	)

	searchHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_hits_per_query",
			Help:    "Number of hits returned per search request.",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	docsAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_added_total",
			Help: "Documents acknowledged by add requests, including replays.",
		},
		[]string{"replayed"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, httpErrResp, searchHits, docsAdded)
}

// ObserveSearchHits records the size of one search result set.
func ObserveSearchHits(n int) {
	searchHits.Observe(float64(n))
}

// CountDocumentsAdded adds n to documents_added_total.
func CountDocumentsAdded(n int, replayed bool) {
	docsAdded.WithLabelValues(strconv.FormatBool(replayed)).Add(float64(n))
}

// Metrics returns a Gin middleware that instruments requests with Prometheus.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.Metrics())
//	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
// Semantics:
//   - Increments http_requests_total(method, path, status) per request
//   - Observes http_request_duration_seconds(method, path) on completion
//   - Tracks http_requests_inflight gauge during handler execution
//   - Observes http_response_size_bytes(method, path) with bytes written
//
// The path label never uses the raw URL, so unmatched requests cannot blow
// up label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		size := c.Writer.Size() // -1 when unknown

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
		// Hijacked connections report -1.
		if size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
