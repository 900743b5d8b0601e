package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful registrations",
	})

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts successfully created",
	})

	ReactionsSet = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reactions_set_total",
		Help: "Total reactions set or overwritten",
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(ReactionsSet)
}

type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument records request duration and status per method and path.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := fmt.Sprintf("%d", rw.statusCode)

		RequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
	})
}
