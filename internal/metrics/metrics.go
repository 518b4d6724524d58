// Package metrics exposes Prometheus collectors for the crawler.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	itemsDispatchedTotal    *prometheus.CounterVec
	dispatchDurationSeconds *prometheus.HistogramVec
	itemsEnqueuedTotal      *prometheus.CounterVec
	fetchesTotal            *prometheus.CounterVec
	fetchDurationSeconds    prometheus.Histogram
	persistTotal            *prometheus.CounterVec
	extractionsTotal        *prometheus.CounterVec
	detailsInFlight         prometheus.Gauge

	once sync.Once
)

// Init registers the collectors. It is safe to call more than once.
func Init() {
	once.Do(func() {
		itemsDispatchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxlume_items_dispatched_total",
				Help: "Work items dispatched, labeled by page kind and outcome.",
			},
			[]string{"kind", "status"},
		)

		dispatchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voxlume_dispatch_duration_seconds",
				Help:    "Time spent dispatching a work item, labeled by page kind.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"kind"},
		)

		itemsEnqueuedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxlume_items_enqueued_total",
				Help: "Work items enqueued, labeled by page kind.",
			},
			[]string{"kind"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxlume_fetches_total",
				Help: "Page fetches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "voxlume_fetch_duration_seconds",
				Help:    "Latency of page fetches including mirror fallbacks.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		persistTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxlume_persist_total",
				Help: "Graph persist transactions, labeled by result.",
			},
			[]string{"result"},
		)

		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxlume_extractions_total",
				Help: "LLM calls, labeled by task and result.",
			},
			[]string{"task", "result"},
		)

		detailsInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "voxlume_details_in_flight",
				Help: "Detail pages currently being processed.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDispatch records a dispatched work item.
func ObserveDispatch(kind, status string, duration time.Duration) {
	Init()
	itemsDispatchedTotal.WithLabelValues(kind, status).Inc()
	dispatchDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// AddEnqueued counts enqueued work items.
func AddEnqueued(kind string, n int) {
	Init()
	if n > 0 {
		itemsEnqueuedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

// ObserveFetch records a fetch outcome such as "ok", "client_error" or "failed".
func ObserveFetch(outcome string, duration time.Duration) {
	Init()
	fetchesTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObservePersist records a persist transaction result ("ok" or "error").
func ObservePersist(result string) {
	Init()
	persistTotal.WithLabelValues(result).Inc()
}

// ObserveExtraction records an LLM call for task ("submissions", "audiobook",
// "short_description", "embedding_description").
func ObserveExtraction(task, result string) {
	Init()
	extractionsTotal.WithLabelValues(task, result).Inc()
}

// IncDetailsInFlight increments the in-flight detail gauge.
func IncDetailsInFlight() {
	Init()
	detailsInFlight.Inc()
}

// DecDetailsInFlight decrements the in-flight detail gauge.
func DecDetailsInFlight() {
	Init()
	detailsInFlight.Dec()
}
