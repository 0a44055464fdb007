package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	PipelineQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinequery",
			Name:      "pipeline_queries_total",
			Help:      "Total number of processed queries",
		},
		[]string{"intent", "status"},
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinequery",
			Name:      "pipeline_duration_seconds",
			Help:      "Pipeline processing duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"intent"},
	)

	PipelineEdgeNotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinequery",
			Name:      "pipeline_edge_notes_total",
			Help:      "Total edge-case flags raised during result correction",
		},
		[]string{"note"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cinequery",
			Name:      "llm_requests_total",
			Help:      "Total number of generative-model requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cinequery",
			Name:      "llm_request_duration_seconds",
			Help:      "Generative-model request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineQueriesTotal)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(PipelineEdgeNotesTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	pipelineMetricsRegistered = true
}
