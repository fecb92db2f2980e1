// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus collectors of the Comicpass API.

Collectors live in a private [Registry] instead of the global default one so
tests can scrape a predictable set of series.

Families:

  - http: in-flight gauge, request counter and latency histogram per route.
  - purchase: outcome counter per kind, conflict retry counter, latency histogram.
  - balance: credited and debited volume counters.
*/
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "comicpass"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	purchaseOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "outcomes_total",
			Help:      "Purchase attempts by kind and outcome code.",
		},
		[]string{"kind", "outcome"},
	)

	purchaseRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "conflict_retries_total",
			Help:      "Purchase transactions re-run after a serialization conflict.",
		},
	)

	purchaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "purchase",
			Name:      "duration_seconds",
			Help:      "End-to-end purchase duration including retries.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"},
	)

	balanceVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "credits_total",
			Help:      "Credits moved through user balances, by direction.",
		},
		[]string{"direction"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		purchaseOutcomes,
		purchaseRetries,
		purchaseDuration,
		balanceVolume,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
//
// The route label is the chi route pattern (e.g. /api/v1/comics/{comicID}),
// which keeps label cardinality bounded regardless of ids in the path.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/metrics" {
			next.ServeHTTP(writer, request)
			return
		}

		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(recorder, request)

		route := routePattern(request)
		method := strings.ToUpper(request.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(recorder.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordPurchase records the outcome of one purchase call.
// Outcome is "completed" on success or the error code otherwise.
func RecordPurchase(kind, outcome string, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	purchaseOutcomes.WithLabelValues(kind, strings.ToLower(outcome)).Inc()
	purchaseDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordPurchaseRetry counts one conflict-driven re-run.
func RecordPurchaseRetry() {
	purchaseRetries.Inc()
}

// RecordDebit adds a committed debit to the balance volume.
func RecordDebit(amount int64) {
	balanceVolume.WithLabelValues("debit").Add(float64(amount))
}

// RecordCredit adds a committed credit to the balance volume.
func RecordCredit(amount int64) {
	balanceVolume.WithLabelValues("credit").Add(float64(amount))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// routePattern resolves the matched chi pattern, falling back to "unmatched".
func routePattern(request *http.Request) string {
	routeContext := chi.RouteContext(request.Context())
	if routeContext == nil {
		return "unmatched"
	}
	if pattern := routeContext.RoutePattern(); pattern != "" {
		return pattern
	}
	return "unmatched"
}
