package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the node-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dlog",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dlog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ledgerHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dlog",
			Subsystem: "ledger",
			Name:      "height",
			Help:      "Current block height of the ledger.",
		},
	)

	ledgerAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dlog",
			Subsystem: "ledger",
			Name:      "accounts",
			Help:      "Number of balance entries in the ledger.",
		},
	)

	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dlog",
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Total number of transfer attempts by outcome.",
		},
		[]string{"status"},
	)

	ticks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dlog",
			Subsystem: "ledger",
			Name:      "ticks_total",
			Help:      "Total number of block ticks applied.",
		},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dlog",
			Subsystem: "ledger",
			Name:      "tick_duration_seconds",
			Help:      "Duration of interest compounding per tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ledgerHeight,
		ledgerAccounts,
		transfers,
		ticks,
		tickDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordTransfer counts one transfer attempt ("ok", "invalid_amount",
// "insufficient_balance").
func RecordTransfer(status string) {
	if status == "" {
		status = "unknown"
	}
	transfers.WithLabelValues(status).Inc()
}

// RecordTick records one applied block tick.
func RecordTick(duration time.Duration) {
	if duration <= 0 {
		duration = time.Microsecond
	}
	ticks.Inc()
	tickDuration.Observe(duration.Seconds())
}

// SetLedgerGauges publishes the current height and account count.
func SetLedgerGauges(height uint64, accounts int) {
	ledgerHeight.Set(float64(height))
	ledgerAccounts.Set(float64(accounts))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses dynamic segments so label cardinality stays low.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "omega", "mc", "sky", "ws":
		if len(parts) > 1 {
			return "/" + parts[0] + "/" + parts[1]
		}
	}
	return "/" + parts[0]
}
