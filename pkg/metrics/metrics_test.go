package metrics

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/novostroy/pkg/chatstream"
)

var _ = Describe("Metrics", func() {
	It("counts outcomes without a stream", func() {
		before := testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeRateLimited))
		ObserveOutcome(OutcomeRateLimited)
		Expect(testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeRateLimited))).To(Equal(before + 1))
	})

	It("records stream statistics", func() {
		okBefore := testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeOK))
		fragBefore := testutil.ToFloat64(streamFragments)
		recBefore := testutil.ToFloat64(streamLines.WithLabelValues("recovered"))
		dropBefore := testutil.ToFloat64(streamLines.WithLabelValues("dropped"))

		ObserveSearch(OutcomeOK, 1500*time.Millisecond, chatstream.Result{
			IDs:   []string{"11", "42"},
			Stats: chatstream.Stats{Fragments: 5, Recovered: 1, Dropped: 2},
		})

		Expect(testutil.ToFloat64(searchesTotal.WithLabelValues(OutcomeOK))).To(Equal(okBefore + 1))
		Expect(testutil.ToFloat64(streamFragments)).To(Equal(fragBefore + 5))
		Expect(testutil.ToFloat64(streamLines.WithLabelValues("recovered"))).To(Equal(recBefore + 1))
		Expect(testutil.ToFloat64(streamLines.WithLabelValues("dropped"))).To(Equal(dropBefore + 2))
		Expect(testutil.CollectAndCount(searchDuration)).To(Equal(1))
	})
})
