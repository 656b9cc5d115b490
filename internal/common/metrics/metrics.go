// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrouter_classifications_total",
			Help: "Total number of inputs classified, by detected format and intent",
		},
		[]string{"format", "intent"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docrouter_extractions_total",
			Help: "Total number of extractor invocations, by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "docrouter_extraction_duration_seconds",
			Help: "Duration of a single extraction in seconds",
		},
		[]string{"format"},
	)

	ConversationEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docrouter_conversation_entries_total",
			Help: "Total number of entries appended to conversation logs",
		},
	)
)
