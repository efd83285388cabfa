package replacement

import (
	"fmt"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/refstring"
)

const (
	optimalName       = "opt"
	optimalPageIDName = "opt-page-id"
)

// TieBreak decides which resident page OPT evicts when every resident page
// is referenced again.
type TieBreak int

const (
	// TieBreakFarthestNextUse evicts the page whose next reference is the
	// farthest in the future. This is Belady's optimal rule.
	TieBreakFarthestNextUse TieBreak = iota

	// TieBreakHighestPageID evicts the page with the largest identifier. It
	// reproduces the results of an earlier implementation that compared page
	// identifiers instead of distances. It is not optimal and can fault more
	// often than LRU.
	TieBreakHighestPageID
)

var tieBreakNames = map[TieBreak]string{
	TieBreakFarthestNextUse: "farthest-next-use",
	TieBreakHighestPageID:   "page-id",
}

func (t TieBreak) String() string {
	name, ok := tieBreakNames[t]
	if !ok {
		return fmt.Sprintf("TieBreak(%d)", int(t))
	}

	return name
}

// ParseTieBreak converts a name printed by TieBreak.String back into a
// TieBreak.
func ParseTieBreak(name string) (TieBreak, error) {
	for t, n := range tieBreakNames {
		if n == name {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown tie-break %q", name)
}

// Optimal is Belady's offline replacement. It looks at the rest of the
// reference string and evicts the page that is needed last, or a page that
// is never needed again. It gives a lower bound for online algorithms.
type Optimal struct {
	hooking.HookableBase

	tieBreak TieBreak
}

// NewOptimal creates an Optimal that breaks ties by next-use distance.
func NewOptimal() *Optimal {
	return &Optimal{
		tieBreak: TieBreakFarthestNextUse,
	}
}

// WithTieBreak sets the rule used when every resident page is used again.
func (a *Optimal) WithTieBreak(t TieBreak) *Optimal {
	a.tieBreak = t
	return a
}

// TieBreak returns the configured tie-break rule.
func (a *Optimal) TieBreak() TieBreak {
	return a.tieBreak
}

// Name returns "opt", or "opt-page-id" with TieBreakHighestPageID.
func (a *Optimal) Name() string {
	if a.tieBreak == TieBreakHighestPageID {
		return optimalPageIDName
	}

	return optimalName
}

// Run counts the faults of seq with the given number of frames.
func (a *Optimal) Run(
	seq refstring.Sequence,
	capacity int,
) (Result, error) {
	if err := checkCapacity(capacity); err != nil {
		return Result{}, err
	}

	nextUse := buildNextUse(seq)
	table := newFrameTable(capacity)
	faults := 0

	for pos, page := range seq {
		access := Access{Position: pos, Page: page}

		if slot, found := table.lookup(page); found {
			table.frames[slot].nextUse = nextUse[pos]
			access.Slot = slot
			notify(&a.HookableBase, a, HookPosPageHit, access)

			continue
		}

		faults++

		if slot, ok := table.freeSlot(); ok {
			table.place(slot, frame{page: page, nextUse: nextUse[pos]})
			access.Slot = slot
			notify(&a.HookableBase, a, HookPosPageLoad, access)

			continue
		}

		slot := a.findVictim(table, len(seq))
		access.Slot = slot
		access.Victim = table.frames[slot].page
		table.place(slot, frame{page: page, nextUse: nextUse[pos]})
		notify(&a.HookableBase, a, HookPosPageEvict, access)
	}

	table.mustNotHaveDuplicatedPage()

	return Result{
		SequenceLength: len(seq),
		Capacity:       capacity,
		FaultCount:     faults,
	}, nil
}

// buildNextUse returns, for every position, the position of the next
// reference to the same page, or len(seq) if there is none.
func buildNextUse(seq refstring.Sequence) []int {
	never := len(seq)
	nextUse := make([]int, len(seq))
	upcoming := make(map[refstring.PageID]int)

	for i := len(seq) - 1; i >= 0; i-- {
		next, ok := upcoming[seq[i]]
		if !ok {
			next = never
		}

		nextUse[i] = next
		upcoming[seq[i]] = i
	}

	return nextUse
}

// findVictim picks the slot to evict. Each frame's nextUse lies strictly
// after the current position, since the current page is not resident.
func (a *Optimal) findVictim(table *frameTable, never int) int {
	table.mustBeFull()

	for i := range table.frames {
		if table.frames[i].nextUse == never {
			return i
		}
	}

	victim := 0
	for i := 1; i < len(table.frames); i++ {
		if a.preferToEvict(table.frames[i], table.frames[victim]) {
			victim = i
		}
	}

	return victim
}

func (a *Optimal) preferToEvict(candidate, current frame) bool {
	switch a.tieBreak {
	case TieBreakHighestPageID:
		return candidate.page > current.page
	default:
		return candidate.nextUse > current.nextUse
	}
}
