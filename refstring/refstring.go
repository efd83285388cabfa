// Package refstring defines reference strings, the sequences of page
// references that page-replacement algorithms are evaluated against.
package refstring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidInput is returned when a reference string contains a symbol that
// cannot be used as a page identifier.
var ErrInvalidInput = errors.New("invalid reference string")

// Textbook is the reference string used in operating-system textbooks to
// check page-replacement algorithms by hand.
const Textbook = "70120304230321201701"

// A PageID identifies a virtual page.
type PageID int

// A Sequence is an ordered list of page references. Algorithms only read it.
type Sequence []PageID

// Len returns the number of references in the sequence.
func (s Sequence) Len() int {
	return len(s)
}

// Distinct returns the number of different pages referenced.
func (s Sequence) Distinct() int {
	seen := make(map[PageID]struct{}, len(s))
	for _, p := range s {
		seen[p] = struct{}{}
	}

	return len(seen)
}

// String formats the sequence compactly. Single-digit pages are written
// back-to-back, like the textbook notation; otherwise pages are separated by
// commas.
func (s Sequence) String() string {
	compact := true
	for _, p := range s {
		if p < 0 || p > 9 {
			compact = false
			break
		}
	}

	var b strings.Builder
	for i, p := range s {
		if !compact && i > 0 {
			b.WriteString(",")
		}

		b.WriteString(strconv.Itoa(int(p)))
	}

	return b.String()
}

// MustParse is like Parse but panics on error. It is intended for literals.
func MustParse(s string) Sequence {
	seq, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return seq
}

// Parse reads a reference string. A string made only of digits is read one
// page per character, so "7012" is pages 7, 0, 1 and 2. Otherwise the string
// is split on commas and whitespace and every field must be a non-negative
// integer.
func Parse(s string) (Sequence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sequence{}, nil
	}

	if isAllDigits(s) {
		seq := make(Sequence, 0, len(s))
		for _, r := range s {
			seq = append(seq, PageID(r-'0'))
		}

		return seq, nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	seq := make(Sequence, 0, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: symbol %q at position %d",
				ErrInvalidInput, f, i)
		}

		seq = append(seq, PageID(n))
	}

	return seq, nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
