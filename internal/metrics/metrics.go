package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	blocksRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "render",
			Name:      "blocks_total",
			Help:      "Blocks passed to the renderer, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	versionOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "versions",
			Name:      "operations_total",
			Help:      "Version create/restore operations.",
		},
		[]string{"op", "success"},
	)

	editorSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "editor",
			Name:      "open_sessions",
			Help:      "Currently open editor sessions.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		blocksRendered,
		versionOps,
		editorSessions,
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// UnknownBlockType labels blocks whose type has no renderer. Their raw type
// is content-defined and is not used as a label value.
const UnknownBlockType = "unknown"

// RecordBlock counts one outcome, rendered or failed, for a registered type.
func RecordBlock(blockType, outcome string) {
	blocksRendered.WithLabelValues(blockType, outcome).Inc()
}

// RecordSkippedBlock counts a block skipped for having no renderer.
func RecordSkippedBlock() {
	blocksRendered.WithLabelValues(UnknownBlockType, "skipped").Inc()
}

func RecordVersionOp(op string, err error) {
	versionOps.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
}

func SetOpenSessions(n int) {
	editorSessions.Set(float64(n))
}
