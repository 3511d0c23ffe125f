package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider metrics, labelled by operation (embed, generate), provider and model.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of generation and embedding provider requests",
		},
		[]string{"operation", "provider", "model", "status"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "provider", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total tokens consumed by provider requests",
		},
		[]string{"operation", "provider", "model", "type"},
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total provider errors",
		},
		[]string{"operation", "provider", "model", "error_type"},
	)

	ProviderKeyRotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_key_rotations_total",
			Help:      "API key rotations after rate limiting",
		},
		[]string{"provider"},
	)
)

// Pipeline metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Report pipeline runs by report type, final stage and outcome",
		},
		[]string{"type", "stage", "outcome"},
	)

	SolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "solutions_total",
			Help:      "Solutions attached to question reports by origin",
		},
		[]string{"origin"},
	)

	TranscriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Audio transcriptions by outcome",
		},
		[]string{"outcome"},
	)

	AdvisoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisories_total",
			Help:      "Knowledge verifications and crop diagnoses by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

var registerOnce sync.Once

// Register registers provider and pipeline metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ProviderRequestsTotal,
			ProviderRequestDuration,
			ProviderTokensTotal,
			ProviderErrorsTotal,
			ProviderKeyRotationsTotal,
			PipelineRunsTotal,
			SolutionsTotal,
			TranscriptionsTotal,
			AdvisoriesTotal,
		)
	})
}
