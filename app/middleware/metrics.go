package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	waitlistSignupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aether_waitlist_signups_total",
			Help: "Accepted waitlist signups",
		},
	)

	pageViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aether_analytics_page_views_total",
			Help: "Recorded page views by device class",
		},
		[]string{"device"},
	)

	clickEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aether_analytics_click_events_total",
			Help: "Recorded UI click events by event type",
		},
		[]string{"event_type"},
	)

	chatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aether_chat_requests_total",
			Help: "Chat proxy requests by outcome",
		},
		[]string{"outcome"},
	)

	contactSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aether_contact_submissions_total",
			Help: "Contact form submissions by notification result",
		},
		[]string{"delivered"},
	)
)

// Chat outcomes
const (
	ChatOutcomeOK          = "ok"
	ChatOutcomeUnavailable = "unavailable"
	ChatOutcomeUpstream    = "upstream_error"
	ChatOutcomeInvalid     = "invalid"
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the error envelope has not written the response yet
			status = statusFromError(err)
		}
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

func RecordWaitlistSignup() {
	waitlistSignupsTotal.Inc()
}

func RecordPageView(device string) {
	pageViewsTotal.WithLabelValues(device).Inc()
}

func RecordClickEvent(eventType string) {
	clickEventsTotal.WithLabelValues(eventType).Inc()
}

func RecordChatRequest(outcome string) {
	chatRequestsTotal.WithLabelValues(outcome).Inc()
}

func RecordContactSubmission(delivered bool) {
	contactSubmissionsTotal.WithLabelValues(strconv.FormatBool(delivered)).Inc()
}
