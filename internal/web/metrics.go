package web

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// cafeCounter is the part of service.CafeService the cafes_total gauge reads.
type cafeCounter interface {
	CountCafes(ctx context.Context) (int, error)
}

// httpMetrics owns a private registry so several servers (and tests) can
// coexist in one process.
//   - cafeapi_http_requests_total: requests by route, method and status
//   - cafeapi_http_request_duration_seconds: latency by route and method
//   - cafeapi_cafes_total: rows in the cafe table, read at scrape time
type httpMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	cafes    prometheus.GaugeFunc
}

func newHTTPMetrics(counter cafeCounter, logger *slog.Logger) *httpMetrics {
	m := &httpMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cafeapi_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cafeapi_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}

	m.cafes = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "cafeapi_cafes_total",
			Help: "Number of cafes in the catalog.",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			n, err := counter.CountCafes(ctx)
			if err != nil {
				logger.Error("count cafes for metrics failed", "error", err)
				return 0
			}
			return float64(n)
		},
	)

	m.registry.MustRegister(
		m.requests,
		m.latency,
		m.cafes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// instrument records every request against the ServeMux pattern it matched.
// It must wrap the mux directly (no request copies in between) so that
// r.Pattern is visible after the call.
func (m *httpMetrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.latency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

func (m *httpMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
