package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	storiesSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stories_submitted_total",
			Help: "Stories accepted into the archive",
		},
	)
	reactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactions_total",
			Help: "Reactions recorded, including quick likes and comment hearts",
		},
		[]string{"type"},
	)
	storyViews = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "story_views_total",
			Help: "First views of a story per browser",
		},
	)
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Rejected submissions",
		},
		[]string{"kind"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the metrics. Call this from main.go
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			storiesSubmitted,
			reactionsTotal,
			storyViews,
			validationFailures,
		)
	})
}

func RecordStorySubmitted() { storiesSubmitted.Inc() }

func RecordReaction(kind string) { reactionsTotal.WithLabelValues(kind).Inc() }

func RecordStoryView() { storyViews.Inc() }

func RecordValidationFailure(kind string) { validationFailures.WithLabelValues(kind).Inc() }

// MonitorMiddleware tracks request counts and latency per route template,
// so story ids never become label values.
func MonitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Initialize with 200 OK in case WriteHeader isn't called explicitly
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		path := routePath(r)
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
	})
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// BasicAuthMiddleware protects /metrics. An empty user disables access.
func BasicAuthMiddleware(metricsUser, metricsPass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || metricsUser == "" ||
				subtle.ConstantTimeCompare([]byte(user), []byte(metricsUser)) != 1 ||
				subtle.ConstantTimeCompare([]byte(pass), []byte(metricsPass)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="Metrics"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
