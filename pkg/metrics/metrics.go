// Package metrics holds the Prometheus collectors for the ai-search function.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
)

// Search outcomes, used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeUpstream    = "upstream_error"
	OutcomeCatalog     = "catalog_error"
	OutcomeAborted     = "aborted"
)

var (
	// searchesTotal counts ai-search requests.
	// Labels: outcome
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novostroy",
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Total ai-search requests by outcome",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "novostroy",
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "Time from request to end of the relayed stream",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	})

	streamFragments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "novostroy",
		Subsystem: "stream",
		Name:      "fragments_total",
		Help:      "Total content fragments assembled from upstream streams",
	})

	// streamLines counts framed lines.
	// Labels: result (recovered, dropped)
	streamLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novostroy",
		Subsystem: "stream",
		Name:      "repaired_lines_total",
		Help:      "Lines split by raw newlines that were re-merged or abandoned",
	}, []string{"result"})

	recommendedComplexes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "novostroy",
		Subsystem: "search",
		Name:      "recommended_complexes",
		Help:      "Number of complex ids recommended per answer",
		Buckets:   []float64{0, 1, 2, 3, 5, 8},
	})
)

// ObserveOutcome records a search that ended without a stream.
func ObserveOutcome(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSearch records a completed (or aborted) stream.
func ObserveSearch(outcome string, elapsed time.Duration, result chatstream.Result) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.Observe(elapsed.Seconds())
	streamFragments.Add(float64(result.Stats.Fragments))
	streamLines.WithLabelValues("recovered").Add(float64(result.Stats.Recovered))
	streamLines.WithLabelValues("dropped").Add(float64(result.Stats.Dropped))
	recommendedComplexes.Observe(float64(len(result.IDs)))
}
