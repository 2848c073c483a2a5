package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the application collectors.
var Registry = prometheus.NewRegistry()

var (
	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cosmetics",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmetics",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cosmetics",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	ordersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmetics",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed, by payment method code.",
		},
		[]string{"payment_method"},
	)

	orderStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmetics",
			Subsystem: "orders",
			Name:      "status_changes_total",
			Help:      "Order status transitions applied by admins.",
		},
		[]string{"status"},
	)

	chatMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cosmetics",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages answered over the socket.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight, httpRequests, httpDuration,
		ordersPlaced, orderStatusChanges, chatMessages,
	)
}

// Middleware records request count, latency and in-flight gauge. The route
// template is used as path label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		httpInFlight.Dec()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

func RecordOrderPlaced(paymentMethod string) {
	ordersPlaced.WithLabelValues(paymentMethod).Inc()
}

func RecordStatusChange(status string) {
	orderStatusChanges.WithLabelValues(status).Inc()
}

func RecordChatMessage() {
	chatMessages.Inc()
}
