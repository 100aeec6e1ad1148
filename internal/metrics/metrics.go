package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "companion",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	redditRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "reddit",
			Name:      "requests_total",
			Help:      "Outbound reddit API calls by operation and status.",
		},
		[]string{"op", "status"},
	)

	mediaResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "media",
			Name:      "resolutions_total",
			Help:      "Third-party media resolutions by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	inboxPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "inbox",
			Name:      "polls_total",
			Help:      "Inbox polls by mode (full/unread) and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "inbox",
			Name:      "notifications_total",
			Help:      "Notifications delivered by sink and outcome.",
		},
		[]string{"sink", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		redditRequests,
		mediaResolutions,
		inboxPolls,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RedditRequest counts one outbound API call; status 0 means no response.
func RedditRequest(op string, status int) {
	redditRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}

func MediaResolution(provider, outcome string) {
	mediaResolutions.WithLabelValues(provider, outcome).Inc()
}

func InboxPoll(full bool, outcome string) {
	mode := "unread"
	if full {
		mode = "full"
	}
	inboxPolls.WithLabelValues(mode, outcome).Inc()
}

func Notification(sink, outcome string) {
	notifications.WithLabelValues(sink, outcome).Inc()
}
