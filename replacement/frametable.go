package replacement

import (
	"log"

	"github.com/sarchlab/pagesim/refstring"
)

type frame struct {
	page  refstring.PageID
	valid bool

	// lastUsed is the logical tick of the latest reference, used by LRU.
	lastUsed uint64

	// nextUse is the position of the next reference to page, used by OPT.
	nextUse int
}

// A frameTable is a fixed set of slots. Slots are filled from index 0 and
// never emptied, so the occupied slots are always a prefix.
type frameTable struct {
	frames   []frame
	numValid int
}

func newFrameTable(capacity int) *frameTable {
	return &frameTable{
		frames: make([]frame, capacity),
	}
}

func (t *frameTable) lookup(page refstring.PageID) (slot int, found bool) {
	for i := 0; i < t.numValid; i++ {
		if t.frames[i].page == page {
			return i, true
		}
	}

	return 0, false
}

func (t *frameTable) freeSlot() (slot int, ok bool) {
	if t.numValid < len(t.frames) {
		return t.numValid, true
	}

	return 0, false
}

// place stores page in slot, replacing whatever was there.
func (t *frameTable) place(slot int, f frame) {
	f.valid = true

	if !t.frames[slot].valid {
		if slot != t.numValid {
			log.Panicf("slot %d filled out of order, %d slots in use",
				slot, t.numValid)
		}

		t.numValid++
	}

	t.frames[slot] = f
}

func (t *frameTable) mustBeFull() {
	if t.numValid != len(t.frames) {
		log.Panicf("eviction requested with %d of %d slots in use",
			t.numValid, len(t.frames))
	}
}

// mustNotHaveDuplicatedPage panics if the same page is resident in two slots.
func (t *frameTable) mustNotHaveDuplicatedPage() {
	seen := make(map[refstring.PageID]int, t.numValid)
	for i := 0; i < t.numValid; i++ {
		if prev, ok := seen[t.frames[i].page]; ok {
			log.Panicf("page %d resident in slots %d and %d",
				t.frames[i].page, prev, i)
		}

		seen[t.frames[i].page] = i
	}
}
