package replacement

import (
	"container/list"
	"log"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/refstring"
)

const stackLRUName = "stack-lru"

// StackLRU is LRU replacement implemented with a recency list. The front of
// the list is the least recently used page and the back is the most recently
// used one. A map from page to list element makes every step O(1).
type StackLRU struct {
	hooking.HookableBase
}

// NewStackLRU creates a StackLRU.
func NewStackLRU() *StackLRU {
	return &StackLRU{}
}

// Name returns "stack-lru".
func (a *StackLRU) Name() string {
	return stackLRUName
}

// Run counts the faults of seq with the given number of frames.
func (a *StackLRU) Run(
	seq refstring.Sequence,
	capacity int,
) (Result, error) {
	if err := checkCapacity(capacity); err != nil {
		return Result{}, err
	}

	recency := list.New()
	index := make(map[refstring.PageID]*list.Element, capacity)
	faults := 0

	for pos, page := range seq {
		access := Access{Position: pos, Page: page, Slot: -1}

		if elem, found := index[page]; found {
			recency.MoveToBack(elem)
			notify(&a.HookableBase, a, HookPosPageHit, access)

			continue
		}

		faults++

		if recency.Len() < capacity {
			index[page] = recency.PushBack(page)
			notify(&a.HookableBase, a, HookPosPageLoad, access)

			continue
		}

		lru := recency.Front()
		victim, ok := recency.Remove(lru).(refstring.PageID)
		if !ok {
			log.Panicf("recency list holds %T, not a page", lru.Value)
		}

		delete(index, victim)
		index[page] = recency.PushBack(page)

		access.Victim = victim
		notify(&a.HookableBase, a, HookPosPageEvict, access)
	}

	if recency.Len() != len(index) || recency.Len() > capacity {
		log.Panicf("recency list has %d pages, index has %d, capacity %d",
			recency.Len(), len(index), capacity)
	}

	return Result{
		SequenceLength: len(seq),
		Capacity:       capacity,
		FaultCount:     faults,
	}, nil
}
