package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rules    prometheus.Histogram
	issues   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsongram",
			Name:      "requests_total",
			Help:      "API requests by operation and status code.",
		}, []string{"op", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jsongram",
			Name:      "request_duration_seconds",
			Help:      "API request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		rules: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jsongram",
			Name:      "grammar_rules",
			Help:      "Generated rules per compiled grammar.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 8),
		}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsongram",
			Name:      "issues_total",
			Help:      "Issues reported by compilations, by code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.requests, m.duration, m.rules, m.issues)
	return m
}

func (s *Server) instrument(op string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		start := time.Now()
		h.ServeHTTP(ww, r)
		s.metrics.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		s.metrics.requests.WithLabelValues(op, strconv.Itoa(ww.Status())).Inc()
	})
}
