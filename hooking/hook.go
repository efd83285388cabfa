// Package hooking lets observers attach to the internal steps of a
// page-replacement run without the algorithms knowing who is listening.
package hooking

import "fmt"

// A HookPos names a step of a run at which hooks fire, such as a page hit or
// an eviction.
type HookPos struct {
	Name string
}

// A HookCtx describes one firing. Domain is the algorithm that fired it and
// Item is the step's payload, a replacement.Access for page events.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
}

// Hookable is implemented by algorithms that report their steps.
type Hookable interface {
	// AcceptHook adds a hook that fires on every step from now on.
	AcceptHook(hook Hook)

	// NumHooks returns how many hooks are attached.
	NumHooks() int

	// Hooks returns the attached hooks in the order they fire.
	Hooks() []Hook
}

// A Hook observes the steps of a run. Func runs inside the simulation loop
// and must not block.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc adapts a plain function to the Hook interface.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// HookableBase is embedded by algorithms to keep their hooks.
type HookableBase struct {
	hooks []Hook
}

// NumHooks returns how many hooks are attached. Algorithms skip building a
// HookCtx when it is 0.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns a copy of the attached hooks.
func (h *HookableBase) Hooks() []Hook {
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)

	return hooks
}

// AcceptHook attaches a hook. It panics if the hook is already attached.
// HookFuncs are not comparable and are always accepted.
func (h *HookableBase) AcceptHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); !isFunc {
		for _, attached := range h.hooks {
			if attached == hook {
				panic(fmt.Sprintf("hook %T attached twice", hook))
			}
		}
	}

	h.hooks = append(h.hooks, hook)
}

// InvokeHook passes ctx to every hook in attachment order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}
