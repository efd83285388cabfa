package monitoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleObject struct {
	Name      string
	Completed int
}

type liveObject struct {
	secret    string
	snapshots int
}

func (o *liveObject) Snapshot() any {
	o.snapshots++

	return &sampleObject{Name: "copy", Completed: o.snapshots}
}

func get(handler http.Handler, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should create and complete progress bars", func() {
		bar1 := m.CreateProgressBar("sweep 1", 10)
		bar2 := m.CreateProgressBar("sweep 2", 4)

		Expect(bar1.ID).NotTo(Equal(bar2.ID))
		Expect(m.NumProgressBars()).To(Equal(2))

		m.CompleteProgressBar(bar1)

		Expect(m.NumProgressBars()).To(Equal(1))
	})

	It("should track progress", func() {
		bar := m.CreateProgressBar("sweep", 10)

		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)
		bar.IncrementFinished(1)

		s := bar.snapshot(bar.StartTime.Add(6 * time.Second))
		Expect(s.InProgress).To(Equal(uint64(1)))
		Expect(s.Finished).To(Equal(uint64(3)))
		Expect(s.Percent).To(BeNumerically("~", 30.0))
		Expect(s.ElapsedSeconds).To(BeNumerically("~", 6.0))
		Expect(s.RemainingSeconds).To(BeNumerically("~", 14.0))
	})

	It("should not finish more jobs than are running", func() {
		bar := m.CreateProgressBar("sweep", 10)

		bar.IncrementInProgress(1)
		bar.MoveInProgressToFinished(2)

		finished, inProgress := bar.Counts()
		Expect(finished).To(Equal(uint64(1)))
		Expect(inProgress).To(BeZero())
	})

	It("should not estimate before the first job finishes", func() {
		bar := m.CreateProgressBar("sweep", 10)

		s := bar.snapshot(bar.StartTime.Add(time.Second))

		Expect(s.Percent).To(BeZero())
		Expect(s.RemainingSeconds).To(BeZero())
	})

	It("should serve progress bars", func() {
		bar := m.CreateProgressBar("sweep", 10)
		bar.IncrementFinished(4)

		rec := get(m.Router(), "/api/progress")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var bars []progressBarRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("sweep"))
		Expect(bars[0].Total).To(Equal(uint64(10)))
		Expect(bars[0].Finished).To(Equal(uint64(4)))
	})

	It("should serve resource usage", func() {
		rec := get(m.Router(), "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should list registered objects", func() {
		m.RegisterObject("b", &sampleObject{Name: "b"})
		m.RegisterObject("a", &sampleObject{Name: "a"})

		rec := get(m.Router(), "/api/objects")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"a", "b"}))
	})

	It("should panic when an object name is reused", func() {
		m.RegisterObject("a", &sampleObject{})

		Expect(func() { m.RegisterObject("a", &sampleObject{}) }).To(Panic())
	})

	It("should serialize a registered object", func() {
		m.RegisterObject("sweeper", &sampleObject{Name: "s", Completed: 3})

		rec := get(m.Router(), "/api/object/sweeper")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Completed"))
	})

	It("should serialize the snapshot of a Snapshotter", func() {
		live := &liveObject{secret: "live-only"}
		m.RegisterObject("sweeper", live)

		rec := get(m.Router(), "/api/object/sweeper")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("copy"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("live-only"))
		Expect(live.snapshots).To(Equal(1))
	})

	It("should return 404 for unknown objects", func() {
		rec := get(m.Router(), "/api/object/nothing")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject bad profile durations", func() {
		rec := get(m.Router(), "/api/profile?seconds=abc")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should collect a short profile", func() {
		rec := get(m.Router(), "/api/profile?seconds=0.05")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("SampleType"))
	})

	It("should fall back to a random port for privileged ports", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})

	It("should start and stop the server", func() {
		url := m.StartServer()

		rsp, err := http.Get(url + "/api/progress")
		Expect(err).NotTo(HaveOccurred())
		body, _ := io.ReadAll(rsp.Body)
		rsp.Body.Close()

		Expect(string(body)).To(Equal("[]"))
		Expect(m.StopServer(context.Background())).To(Succeed())
	})
})
