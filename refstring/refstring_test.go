package refstring

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	It("should read digit strings one page per character", func() {
		seq, err := Parse(Textbook)

		Expect(err).NotTo(HaveOccurred())
		Expect(seq).To(HaveLen(20))
		Expect(seq[:5]).To(Equal(Sequence{7, 0, 1, 2, 0}))
		Expect(seq.Distinct()).To(Equal(6))
	})

	It("should read separated lists", func() {
		seq, err := Parse("12, 3 40,5")

		Expect(err).NotTo(HaveOccurred())
		Expect(seq).To(Equal(Sequence{12, 3, 40, 5}))
	})

	It("should return an empty sequence for blank input", func() {
		seq, err := Parse("   ")

		Expect(err).NotTo(HaveOccurred())
		Expect(seq).To(BeEmpty())
	})

	It("should reject symbols that are not page numbers", func() {
		_, err := Parse("1, 2, x")

		Expect(err).To(MatchError(ErrInvalidInput))
		Expect(err.Error()).To(ContainSubstring(`"x"`))
	})

	It("should reject negative pages", func() {
		_, err := Parse("1 -2")

		Expect(err).To(MatchError(ErrInvalidInput))
	})

	It("should format compactly when all pages are digits", func() {
		Expect(MustParse(Textbook).String()).To(Equal(Textbook))
		Expect(Sequence{1, 12, 3}.String()).To(Equal("1,12,3"))
	})

	It("should panic in MustParse on bad input", func() {
		Expect(func() { MustParse("a") }).To(Panic())
	})
})

var _ = Describe("Generator", func() {
	It("should default to ten digits", func() {
		seq, err := MakeGenerator().WithSeed(1).Generate(DefaultLength)

		Expect(err).NotTo(HaveOccurred())
		Expect(seq).To(HaveLen(DefaultLength))
		for _, p := range seq {
			Expect(p).To(BeNumerically(">=", 0))
			Expect(p).To(BeNumerically("<", DefaultAlphabetSize))
		}
	})

	It("should be reproducible with a seed", func() {
		g := MakeGenerator().WithAlphabetSize(5).WithSeed(42)

		a, _ := g.Generate(100)
		b, _ := g.Generate(100)

		Expect(a).To(Equal(b))
	})

	It("should stay inside the alphabet", func() {
		seq, _ := MakeGenerator().WithAlphabetSize(3).WithSeed(7).Generate(500)

		Expect(seq.Distinct()).To(BeNumerically("<=", 3))
	})

	It("should reject an empty alphabet", func() {
		_, err := MakeGenerator().WithAlphabetSize(0).Generate(5)

		Expect(err).To(MatchError(ErrInvalidInput))
	})

	It("should reject negative lengths", func() {
		_, err := MakeGenerator().Generate(-1)

		Expect(err).To(MatchError(ErrInvalidInput))
	})

	It("should allow zero-length sequences", func() {
		seq, err := MakeGenerator().Generate(0)

		Expect(err).NotTo(HaveOccurred())
		Expect(seq).To(BeEmpty())
	})
})
