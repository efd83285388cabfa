package replacement

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/refstring"
)

type hookedAlgorithm interface {
	Algorithm
	hooking.Hookable
}

var _ = Describe("Hooks", func() {
	for _, newAlgorithm := range []func() hookedAlgorithm{
		func() hookedAlgorithm { return NewCounterLRU() },
		func() hookedAlgorithm { return NewStackLRU() },
		func() hookedAlgorithm { return NewOptimal() },
	} {
		newAlgorithm := newAlgorithm

		It("should report hits, loads and evictions", func() {
			a := newAlgorithm()
			tracer := hooking.NewEventCountTracer()
			a.AcceptHook(tracer)

			r, err := a.Run(textbook, 3)
			Expect(err).NotTo(HaveOccurred())

			loads := tracer.GetCount(HookPosPageLoad.Name)
			evictions := tracer.GetCount(HookPosPageEvict.Name)
			hits := tracer.GetCount(HookPosPageHit.Name)

			Expect(loads).To(Equal(uint64(3)))
			Expect(loads + evictions).To(Equal(uint64(r.FaultCount)))
			Expect(hits).To(Equal(uint64(r.HitCount())))
		})
	}

	It("should describe the eviction", func() {
		a := NewCounterLRU()

		var evictions []Access
		a.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Domain).To(BeIdenticalTo(a))

			if ctx.Pos == HookPosPageEvict {
				evictions = append(evictions, ctx.Item.(Access))
			}
		}))

		_, err := a.Run(refstring.Sequence{1, 2, 1, 3}, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(evictions).To(ConsistOf(Access{
			Position: 3,
			Page:     3,
			Slot:     1,
			Victim:   2,
		}))
	})

	It("should report the stack victim", func() {
		a := NewStackLRU()

		var victims []refstring.PageID
		a.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosPageEvict {
				victims = append(victims, ctx.Item.(Access).Victim)
			}
		}))

		_, err := a.Run(refstring.Sequence{1, 2, 1, 3, 4}, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(victims).To(Equal([]refstring.PageID{2, 1}))
	})
})
