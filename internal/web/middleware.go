package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type instrumentation struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logger   logrus.FieldLogger
}

func newInstrumentation(reg prometheus.Registerer, logger logrus.FieldLogger) *instrumentation {
	in := &instrumentation{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mkanban_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mkanban_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		logger: logger,
	}
	reg.MustRegister(in.requests, in.duration)
	return in
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// wrap records every request under the mux pattern that served it, so
// path parameters do not blow up label cardinality.
func (in *instrumentation) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		in.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		in.duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		in.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed,
		}).Debug("request served")
	})
}
