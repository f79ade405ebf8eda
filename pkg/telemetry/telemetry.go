// Package telemetry exposes the bot's prometheus metrics and a small
// middleware for the ops HTTP mux.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mimicbot_events_total",
		Help: "Platform events consumed, by kind.",
	}, []string{"kind"})

	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mimicbot_generations_total",
		Help: "Successful generations, by mode.",
	}, []string{"mode"})

	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mimicbot_generation_failures_total",
		Help: "Failed generation actions, by cause.",
	}, []string{"cause"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mimicbot_sessions_active",
		Help: "Live regeneration sessions.",
	})

	SessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_sessions_expired_total",
		Help: "Sessions removed by the expiry sweep.",
	})

	Shares = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mimicbot_shares_total",
		Help: "Shared copies published.",
	})

	opsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mimicbot_ops_http_in_flight",
		Help: "Ops HTTP requests currently being served.",
	})

	opsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mimicbot_ops_http_duration_seconds",
		Help:    "Ops HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// Middleware records in-flight count and latency for the ops mux.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opsInFlight.Inc()
		start := time.Now()
		next.ServeHTTP(w, r)
		opsDuration.WithLabelValues(r.URL.Path).Observe(time.Since(start).Seconds())
		opsInFlight.Dec()
	})
}
