package replacement

import (
	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/refstring"
)

const counterLRUName = "counter-lru"

// CounterLRU is LRU replacement implemented with a logical clock. Every frame
// remembers the tick of its last reference and the frame with the smallest
// tick is evicted. Finding a page or a victim scans all frames.
type CounterLRU struct {
	hooking.HookableBase
}

// NewCounterLRU creates a CounterLRU.
func NewCounterLRU() *CounterLRU {
	return &CounterLRU{}
}

// Name returns "counter-lru".
func (a *CounterLRU) Name() string {
	return counterLRUName
}

// Run counts the faults of seq with the given number of frames.
func (a *CounterLRU) Run(
	seq refstring.Sequence,
	capacity int,
) (Result, error) {
	if err := checkCapacity(capacity); err != nil {
		return Result{}, err
	}

	table := newFrameTable(capacity)
	faults := 0

	var clock uint64
	for pos, page := range seq {
		tick := clock
		clock++

		access := Access{Position: pos, Page: page}

		if slot, found := table.lookup(page); found {
			table.frames[slot].lastUsed = tick
			access.Slot = slot
			notify(&a.HookableBase, a, HookPosPageHit, access)

			continue
		}

		faults++

		if slot, ok := table.freeSlot(); ok {
			table.place(slot, frame{page: page, lastUsed: tick})
			access.Slot = slot
			notify(&a.HookableBase, a, HookPosPageLoad, access)

			continue
		}

		slot := a.leastRecentlyUsed(table)
		access.Slot = slot
		access.Victim = table.frames[slot].page
		table.place(slot, frame{page: page, lastUsed: tick})
		notify(&a.HookableBase, a, HookPosPageEvict, access)
	}

	table.mustNotHaveDuplicatedPage()

	return Result{
		SequenceLength: len(seq),
		Capacity:       capacity,
		FaultCount:     faults,
	}, nil
}

// leastRecentlyUsed returns the slot with the smallest tick. The first slot
// wins a tie.
func (a *CounterLRU) leastRecentlyUsed(table *frameTable) int {
	table.mustBeFull()

	oldest := 0
	for i := 1; i < len(table.frames); i++ {
		if table.frames[i].lastUsed < table.frames[oldest].lastUsed {
			oldest = i
		}
	}

	return oldest
}
