package refstring

import (
	"fmt"
	"math/rand"
)

// DefaultAlphabetSize and DefaultLength describe the random reference strings
// produced when nothing else is configured: ten references drawn from the
// digits 0-9.
const (
	DefaultAlphabetSize = 10
	DefaultLength       = 10
)

// A Generator produces pseudo-random reference strings.
type Generator struct {
	alphabetSize int
	seed         int64
	seeded       bool
}

// MakeGenerator returns a Generator with the default alphabet.
func MakeGenerator() Generator {
	return Generator{
		alphabetSize: DefaultAlphabetSize,
	}
}

// WithAlphabetSize sets how many different pages can be referenced. Pages are
// numbered from 0.
func (g Generator) WithAlphabetSize(n int) Generator {
	g.alphabetSize = n
	return g
}

// WithSeed makes the generated sequence reproducible.
func (g Generator) WithSeed(seed int64) Generator {
	g.seed = seed
	g.seeded = true

	return g
}

// Generate returns a sequence of the given length.
func (g Generator) Generate(length int) (Sequence, error) {
	if g.alphabetSize < 1 {
		return nil, fmt.Errorf("%w: alphabet size %d", ErrInvalidInput,
			g.alphabetSize)
	}

	if length < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidInput, length)
	}

	var rng *rand.Rand
	if g.seeded {
		rng = rand.New(rand.NewSource(g.seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	seq := make(Sequence, length)
	for i := range seq {
		seq[i] = PageID(rng.Intn(g.alphabetSize))
	}

	return seq, nil
}
