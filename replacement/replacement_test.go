package replacement

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/refstring"
)

func mustRun(a Algorithm, seq refstring.Sequence, capacity int) int {
	r, err := a.Run(seq, capacity)
	Expect(err).NotTo(HaveOccurred())
	Expect(r.SequenceLength).To(Equal(len(seq)))
	Expect(r.Capacity).To(Equal(capacity))

	return r.FaultCount
}

func randomSequence(rng *rand.Rand, maxLen, alphabet int) refstring.Sequence {
	seq := make(refstring.Sequence, rng.Intn(maxLen+1))
	for i := range seq {
		seq[i] = refstring.PageID(rng.Intn(alphabet))
	}

	return seq
}

var textbook = refstring.MustParse(refstring.Textbook)

var _ = Describe("Textbook reference string", func() {
	DescribeTable("fault counts by capacity",
		func(capacity, lru, opt, optPageID int) {
			Expect(mustRun(NewCounterLRU(), textbook, capacity)).To(Equal(lru))
			Expect(mustRun(NewStackLRU(), textbook, capacity)).To(Equal(lru))
			Expect(mustRun(NewOptimal(), textbook, capacity)).To(Equal(opt))

			legacy := NewOptimal().WithTieBreak(TieBreakHighestPageID)
			Expect(mustRun(legacy, textbook, capacity)).To(Equal(optPageID))
		},
		Entry("1 frame", 1, 20, 20, 20),
		Entry("2 frames", 2, 17, 13, 14),
		Entry("3 frames", 3, 12, 9, 10),
		Entry("4 frames", 4, 8, 8, 8),
		Entry("5 frames", 5, 7, 7, 7),
		Entry("6 frames", 6, 6, 6, 6),
		Entry("7 frames", 7, 6, 6, 6),
	)
})

var _ = Describe("Common behavior", func() {
	for _, a := range []Algorithm{
		NewCounterLRU(),
		NewStackLRU(),
		NewOptimal(),
		NewOptimal().WithTieBreak(TieBreakHighestPageID),
	} {
		a := a

		Context(a.Name(), func() {
			It("should reject zero capacity", func() {
				_, err := a.Run(textbook, 0)
				Expect(err).To(MatchError(ErrInvalidCapacity))
			})

			It("should reject negative capacity", func() {
				_, err := a.Run(textbook, -3)
				Expect(err).To(MatchError(ErrInvalidCapacity))
			})

			It("should return zero faults for an empty sequence", func() {
				r, err := a.Run(refstring.Sequence{}, 4)

				Expect(err).NotTo(HaveOccurred())
				Expect(r).To(Equal(Result{SequenceLength: 0, Capacity: 4}))
			})

			It("should fault on every change of page with one frame", func() {
				seq := refstring.Sequence{1, 1, 2, 2, 2, 1, 3, 3}
				Expect(mustRun(a, seq, 1)).To(Equal(4))
			})

			It("should fault on every reference of all-distinct pages", func() {
				seq := refstring.Sequence{5, 4, 3, 2, 1, 0}
				Expect(mustRun(a, seq, len(seq))).To(Equal(len(seq)))
			})

			It("should fault once per page when everything fits", func() {
				seq := refstring.MustParse("1 2 1 3 2 1 3 3 2")
				Expect(mustRun(a, seq, 3)).To(Equal(3))
				Expect(mustRun(a, seq, 10)).To(Equal(3))
			})

			It("should give the same result when run again", func() {
				first, _ := a.Run(textbook, 3)
				second, _ := a.Run(textbook, 3)

				Expect(second).To(Equal(first))
			})
		})
	}
})

var _ = Describe("Properties", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(GinkgoRandomSeed()))
	})

	It("should give identical counts for both LRU implementations", func() {
		for i := 0; i < 2000; i++ {
			seq := randomSequence(rng, 60, 8)
			capacity := rng.Intn(8) + 1

			Expect(mustRun(NewCounterLRU(), seq, capacity)).To(
				Equal(mustRun(NewStackLRU(), seq, capacity)),
				"sequence %s, capacity %d", seq, capacity)
		}
	})

	It("should never fault more with farthest-next-use OPT than LRU", func() {
		for i := 0; i < 2000; i++ {
			seq := randomSequence(rng, 60, 8)
			capacity := rng.Intn(8) + 1

			Expect(mustRun(NewOptimal(), seq, capacity)).To(
				BeNumerically("<=", mustRun(NewCounterLRU(), seq, capacity)),
				"sequence %s, capacity %d", seq, capacity)
		}
	})

	It("should fault exactly once per page when capacity covers them", func() {
		for i := 0; i < 500; i++ {
			seq := randomSequence(rng, 40, 6)
			capacity := seq.Distinct() + rng.Intn(3)
			if capacity == 0 {
				capacity = 1
			}

			for _, a := range Defaults() {
				Expect(mustRun(a, seq, capacity)).To(Equal(seq.Distinct()))
			}
		}
	})

	It("should never fault more with more frames under OPT", func() {
		for i := 0; i < 500; i++ {
			seq := randomSequence(rng, 40, 7)
			capacity := rng.Intn(6) + 1

			Expect(mustRun(NewOptimal(), seq, capacity+1)).To(
				BeNumerically("<=", mustRun(NewOptimal(), seq, capacity)))
		}
	})
})

var _ = Describe("Optimal", func() {
	It("should evict a page that is never used again first", func() {
		// 1, 2, 3 fill the frames. At 4, page 1 is never used again even
		// though it has the smallest identifier, so it is the victim.
		seq := refstring.Sequence{1, 2, 3, 4, 2, 3, 2, 3}

		Expect(mustRun(NewOptimal(), seq, 3)).To(Equal(4))
		Expect(mustRun(
			NewOptimal().WithTieBreak(TieBreakHighestPageID), seq, 3),
		).To(Equal(4))
	})

	It("should deviate from optimal with the page-id tie-break", func() {
		seq := refstring.Sequence{3, 4, 1, 4, 1, 3}
		legacy := NewOptimal().WithTieBreak(TieBreakHighestPageID)

		Expect(mustRun(NewCounterLRU(), seq, 2)).To(Equal(4))
		Expect(mustRun(NewOptimal(), seq, 2)).To(Equal(4))
		Expect(mustRun(legacy, seq, 2)).To(Equal(5))
	})

	It("should name the variants differently", func() {
		Expect(NewOptimal().Name()).To(Equal("opt"))
		Expect(NewOptimal().WithTieBreak(TieBreakHighestPageID).Name()).
			To(Equal("opt-page-id"))
	})

	It("should parse tie-break names", func() {
		for _, t := range []TieBreak{
			TieBreakFarthestNextUse,
			TieBreakHighestPageID,
		} {
			parsed, err := ParseTieBreak(t.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(t))
		}

		_, err := ParseTieBreak("random")
		Expect(err).To(HaveOccurred())
	})

	It("should compute next uses", func() {
		seq := refstring.Sequence{1, 2, 1, 3, 2}

		Expect(buildNextUse(seq)).To(Equal([]int{2, 4, 5, 5, 5}))
	})
})

var _ = Describe("ByName", func() {
	It("should create every registered algorithm", func() {
		for _, name := range Names() {
			a, err := ByName(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(a.Name()).To(Equal(name))
		}
	})

	It("should reject unknown names", func() {
		_, err := ByName("fifo")

		Expect(err).To(MatchError(ErrUnknownAlgorithm))
	})
})

var _ = Describe("Result", func() {
	It("should derive hits and fault rate", func() {
		r := Result{SequenceLength: 20, Capacity: 3, FaultCount: 12}

		Expect(r.HitCount()).To(Equal(8))
		Expect(r.FaultRate()).To(BeNumerically("~", 0.6, 1e-9))
		Expect(Result{Capacity: 1}.FaultRate()).To(BeZero())
	})
})
