package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index Prometheus metrics.
var (
	IndexRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "govsearch",
			Name:      "index_records",
			Help:      "Number of records in the current index snapshot",
		},
	)

	IndexRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "govsearch",
			Name:      "index_rebuilds_total",
			Help:      "Total number of index rebuilds",
		},
	)

	IndexRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "govsearch",
			Name:      "index_rebuild_duration_seconds",
			Help:      "Index rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ProviderFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "govsearch",
			Name:      "provider_failures_total",
			Help:      "Total provider failures during index rebuilds",
		},
		[]string{"provider"},
	)

	RecordsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "govsearch",
			Name:      "records_dropped_total",
			Help:      "Total malformed records dropped during index rebuilds",
		},
		[]string{"provider"},
	)
)

var indexMetricsRegistered bool

// RegisterIndexMetrics registers Prometheus index metrics. Must be called once from main.
func RegisterIndexMetrics() {
	if indexMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexRecords)
	prometheus.MustRegister(IndexRebuildsTotal)
	prometheus.MustRegister(IndexRebuildDuration)
	prometheus.MustRegister(ProviderFailuresTotal)
	prometheus.MustRegister(RecordsDroppedTotal)
	indexMetricsRegistered = true
}
