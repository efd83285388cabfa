// Package replacement implements page-replacement algorithms that count the
// page faults a reference string causes in a fixed number of frames.
package replacement

import (
	"errors"
	"fmt"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/refstring"
)

// ErrInvalidCapacity is returned when an algorithm is asked to run with fewer
// than one frame.
var ErrInvalidCapacity = errors.New("capacity must be at least 1")

// ErrUnknownAlgorithm is returned by ByName for names that are not
// registered.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// A Result is the outcome of running one algorithm over one reference string
// with one frame capacity.
type Result struct {
	SequenceLength int
	Capacity       int
	FaultCount     int
}

// HitCount returns the number of references that found their page resident.
func (r Result) HitCount() int {
	return r.SequenceLength - r.FaultCount
}

// FaultRate returns the fraction of references that faulted.
func (r Result) FaultRate() float64 {
	if r.SequenceLength == 0 {
		return 0
	}

	return float64(r.FaultCount) / float64(r.SequenceLength)
}

// An Algorithm simulates a page-replacement policy. Run must not keep any
// state between calls.
type Algorithm interface {
	Name() string
	Run(seq refstring.Sequence, capacity int) (Result, error)
}

// An Access describes a single reference processed by an algorithm. It is
// passed to hooks as the HookCtx Item.
type Access struct {
	Position int
	Page     refstring.PageID

	// Slot is the frame that holds Page after the access, or -1 if the
	// algorithm does not number its frames.
	Slot int

	// Victim is the page evicted to make room. Only meaningful at
	// HookPosPageEvict.
	Victim refstring.PageID
}

// HookPosPageHit marks a reference to a resident page.
var HookPosPageHit = &hooking.HookPos{Name: "PageHit"}

// HookPosPageLoad marks a fault served by a free frame.
var HookPosPageLoad = &hooking.HookPos{Name: "PageLoad"}

// HookPosPageEvict marks a fault that required evicting a resident page.
var HookPosPageEvict = &hooking.HookPos{Name: "PageEvict"}

func checkCapacity(capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	return nil
}

func notify(
	h *hooking.HookableBase,
	domain hooking.Hookable,
	pos *hooking.HookPos,
	access Access,
) {
	if h.NumHooks() == 0 {
		return
	}

	h.InvokeHook(hooking.HookCtx{
		Domain: domain,
		Pos:    pos,
		Item:   access,
	})
}

// Names lists the algorithm names accepted by ByName.
func Names() []string {
	return []string{
		counterLRUName,
		stackLRUName,
		optimalName,
		optimalPageIDName,
	}
}

// ByName creates an algorithm from its registered name.
func ByName(name string) (Algorithm, error) {
	switch name {
	case counterLRUName:
		return NewCounterLRU(), nil
	case stackLRUName:
		return NewStackLRU(), nil
	case optimalName:
		return NewOptimal(), nil
	case optimalPageIDName:
		return NewOptimal().WithTieBreak(TieBreakHighestPageID), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// Defaults returns one instance of every algorithm with default settings.
func Defaults() []Algorithm {
	return []Algorithm{
		NewCounterLRU(),
		NewStackLRU(),
		NewOptimal(),
	}
}
