package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfilment_http_requests_total",
			Help: "Handled requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfilment_http_latency_seconds",
			Help:    "Request latency by method and route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests)
	prometheus.MustRegister(httpLatency)
}

// Metrics labels each request with the full chi route pattern, such as
// /api/v1/warehouse/{id}/, so ids never become label values. Requests that
// match no route are not recorded.
func Metrics(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := routePattern(r)
			if route == "" {
				return
			}
			httpLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}

func routePattern(r *http.Request) string {
	ctx := chi.RouteContext(r.Context())
	if ctx == nil {
		return ""
	}
	return ctx.RoutePattern()
}

func Logging(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			log.Trace().
				Str("requestId", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("host", r.Host).
				Str("uri", r.RequestURI).
				Str("proto", r.Proto).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).Send()
		}()
		next.ServeHTTP(ww, r)
	}

	return http.HandlerFunc(fn)
}
