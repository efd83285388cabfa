package hooking

import (
	"sync"
)

// EventCountTracer counts how many times each hook position is triggered.
type EventCountTracer struct {
	lock sync.Mutex

	posNames []string
	count    map[string]uint64
}

// NewEventCountTracer creates a new EventCountTracer.
func NewEventCountTracer() *EventCountTracer {
	return &EventCountTracer{
		count: make(map[string]uint64),
	}
}

// Func records the position of the hook.
func (t *EventCountTracer) Func(ctx HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.count[ctx.Pos.Name]
	if !ok {
		t.posNames = append(t.posNames, ctx.Pos.Name)
	}

	t.count[ctx.Pos.Name]++
}

// GetPosNames returns the names of the positions that have been triggered,
// in the order they were first seen.
func (t *EventCountTracer) GetPosNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, len(t.posNames))
	copy(names, t.posNames)

	return names
}

// GetCount returns how many times a position has been triggered.
func (t *EventCountTracer) GetCount(posName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count[posName]
}

// Reset clears all the counts.
func (t *EventCountTracer) Reset() {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.posNames = nil
	t.count = make(map[string]uint64)
}
