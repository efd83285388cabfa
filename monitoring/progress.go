package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar counts the jobs of one sweep. Jobs are either waiting,
// running or finished.
type ProgressBar struct {
	ID        string
	Name      string
	StartTime time.Time
	Total     uint64

	lock       sync.Mutex
	finished   uint64
	inProgress uint64
}

type progressBarRsp struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	StartTime        time.Time `json:"start_time"`
	Total            uint64    `json:"total"`
	Finished         uint64    `json:"finished"`
	InProgress       uint64    `json:"in_progress"`
	Percent          float64   `json:"percent"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
	RemainingSeconds float64   `json:"remaining_seconds"`
}

// IncrementInProgress marks jobs as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress += amount
}

// IncrementFinished marks jobs as finished without having been started.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
}

// MoveInProgressToFinished marks started jobs as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if amount > b.inProgress {
		amount = b.inProgress
	}

	b.inProgress -= amount
	b.finished += amount
}

// Counts returns the number of finished and running jobs.
func (b *ProgressBar) Counts() (finished, inProgress uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.finished, b.inProgress
}

// snapshot estimates the remaining time from the average time per finished
// job. The estimate is 0 until the first job finishes.
func (b *ProgressBar) snapshot(now time.Time) progressBarRsp {
	finished, inProgress := b.Counts()

	rsp := progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   finished,
		InProgress: inProgress,
	}

	elapsed := now.Sub(b.StartTime).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	rsp.ElapsedSeconds = elapsed

	if b.Total > 0 {
		rsp.Percent = 100 * float64(finished) / float64(b.Total)
	}

	if finished > 0 && finished < b.Total {
		rsp.RemainingSeconds =
			elapsed / float64(finished) * float64(b.Total-finished)
	}

	return rsp
}
