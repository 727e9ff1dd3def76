package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction and dataset Prometheus metrics.
var (
	ExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Resume extractions by outcome",
		},
		[]string{"outcome"}, // "ok" / "failed"
	)

	ExtractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Resume extraction duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	DatasetLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Reference dataset loads by dataset and status",
		},
		[]string{"dataset", "status"},
	)

	DatasetLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Reference dataset load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"dataset"},
	)

	DatasetRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows held by the last successful dataset load",
		},
		[]string{"dataset"},
	)

	MatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Occupation ranking duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers extraction, dataset and matching metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionsTotal)
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetLoadDuration)
	prometheus.MustRegister(DatasetRows)
	prometheus.MustRegister(MatchDuration)
	pipelineMetricsRegistered = true
}
