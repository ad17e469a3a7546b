// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests by outcome",
		},
		[]string{"status"},
	)

	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chat_request_duration_seconds",
			Help: "Duration of chat request handling in seconds",
		},
		[]string{"status"},
	)

	ExtractorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_calls_total",
			Help: "Total extractor invocations by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "llm_call_duration_seconds",
			Help: "Duration of remote LLM completion calls in seconds",
		},
		[]string{"status"},
	)

	PRDCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prd_completed_total",
			Help: "Number of merges that reached the complete PRD state",
		},
	)
)
