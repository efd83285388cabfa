package replacement

import (
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gmeasure"

	"github.com/sarchlab/pagesim/refstring"
)

var _ = Describe("Runtime", Label("measurement"), func() {
	It("should compare the cost of the two LRU implementations", func() {
		rng := rand.New(rand.NewSource(1))
		seq := make(refstring.Sequence, 20000)
		for i := range seq {
			seq[i] = refstring.PageID(rng.Intn(512))
		}

		experiment := gmeasure.NewExperiment("LRU implementations")
		AddReportEntry(experiment.Name, experiment)

		const capacity = 256
		for _, a := range []Algorithm{NewCounterLRU(), NewStackLRU()} {
			a := a

			experiment.Sample(func(idx int) {
				experiment.MeasureDuration(a.Name(), func() {
					_, err := a.Run(seq, capacity)
					Expect(err).NotTo(HaveOccurred())
				})
			}, gmeasure.SamplingConfig{N: 5, Duration: 10 * time.Second})
		}

		counter := experiment.GetStats(counterLRUName)
		stack := experiment.GetStats(stackLRUName)

		Expect(counter.DurationFor(gmeasure.StatMedian)).To(
			BeNumerically(">", stack.DurationFor(gmeasure.StatMedian)))
	})
})
