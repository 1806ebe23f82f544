// Package metrics exposes Prometheus collectors for the screenshot service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Capture outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	httpRequestsTotal             *prometheus.CounterVec
	httpRequestDurationSeconds    *prometheus.HistogramVec
	webshotCapturesTotal          *prometheus.CounterVec
	webshotCaptureDurationSeconds *prometheus.HistogramVec
	webshotCaptureBytesTotal      *prometheus.CounterVec
	webshotBrowsersActive         prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)

		webshotCapturesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshot_captures_total",
				Help: "Total number of screenshot captures, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		webshotCaptureDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webshot_capture_duration_seconds",
				Help:    "Histogram of capture latencies including the requested delay, labeled by outcome.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		)

		webshotCaptureBytesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webshot_capture_bytes_total",
				Help: "Total number of PNG bytes captured, labeled by site.",
			},
			[]string{"site"},
		)

		webshotBrowsersActive = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "webshot_browsers_active",
				Help: "Number of headless browser processes currently running.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCapture records the outcome, latency and size of one capture.
func ObserveCapture(site, outcome string, pngBytes int, duration time.Duration) {
	Init()
	sanitizedSite := SanitizeSite(site)
	webshotCapturesTotal.WithLabelValues(sanitizedSite, outcome).Inc()
	webshotCaptureDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
	if pngBytes > 0 {
		webshotCaptureBytesTotal.WithLabelValues(sanitizedSite).Add(float64(pngBytes))
	}
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncActiveBrowsers increments the running browser gauge.
func IncActiveBrowsers() {
	Init()
	webshotBrowsersActive.Inc()
}

// DecActiveBrowsers decrements the running browser gauge.
func DecActiveBrowsers() {
	Init()
	webshotBrowsersActive.Dec()
}
