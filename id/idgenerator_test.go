package id

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IDGenerator", func() {
	It("should generate sequential IDs", func() {
		g := NewIDGenerator()

		Expect(g.Generate()).To(Equal("1"))
		Expect(g.Generate()).To(Equal("2"))
	})

	It("should not repeat IDs across goroutines", func() {
		g := NewIDGenerator()
		ids := make(chan string, 1000)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					ids <- g.Generate()
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			Expect(seen).NotTo(HaveKey(id))
			seen[id] = true
		}
		Expect(seen).To(HaveLen(1000))
	})

	It("should generate distinct global IDs", func() {
		g := NewGlobalIDGenerator()

		Expect(g.Generate()).NotTo(Equal(g.Generate()))
		Expect(g.Generate()).To(HaveLen(20))
	})
})
