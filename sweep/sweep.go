// Package sweep runs page-replacement algorithms over a range of frame
// capacities and collects their results.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/id"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/refstring"
	"github.com/sarchlab/pagesim/replacement"
)

// ProgressBarCreator can create progress bars for running sweeps.
// monitoring.Monitor satisfies it.
type ProgressBarCreator interface {
	CreateProgressBar(name string, total uint64) *monitoring.ProgressBar
	CompleteProgressBar(pb *monitoring.ProgressBar)
}

// Builder can build Sweepers.
type Builder struct {
	algorithms  []replacement.Algorithm
	minCapacity int
	maxCapacity int
	numWorkers  int
	recorder    datarecording.DataRecorder
	progress    ProgressBarCreator
	idGenerator id.IDGenerator
}

// MakeBuilder creates a builder that sweeps capacities 1 to 7 with the
// default algorithms.
func MakeBuilder() Builder {
	return Builder{
		algorithms:  replacement.Defaults(),
		minCapacity: 1,
		maxCapacity: 7,
		numWorkers:  runtime.GOMAXPROCS(0),
		idGenerator: id.NewGlobalIDGenerator(),
	}
}

// WithAlgorithms sets the algorithms to compare. Their names must be unique.
func (b Builder) WithAlgorithms(algorithms ...replacement.Algorithm) Builder {
	b.algorithms = algorithms
	return b
}

// WithCapacityRange sets the inclusive range of frame capacities.
func (b Builder) WithCapacityRange(minCapacity, maxCapacity int) Builder {
	b.minCapacity = minCapacity
	b.maxCapacity = maxCapacity

	return b
}

// WithWorkers sets how many runs may execute at the same time.
func (b Builder) WithWorkers(n int) Builder {
	b.numWorkers = n
	return b
}

// WithRecorder records every sweep into the given recorder.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithProgressBarCreator reports the progress of every sweep.
func (b Builder) WithProgressBarCreator(p ProgressBarCreator) Builder {
	b.progress = p
	return b
}

// WithIDGenerator sets how run IDs are generated.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGenerator = g
	return b
}

// Build creates the Sweeper.
func (b Builder) Build() (*Sweeper, error) {
	if len(b.algorithms) == 0 {
		return nil, errors.New("at least one algorithm is required")
	}

	if b.minCapacity < 1 {
		return nil, fmt.Errorf("%w: minimum capacity %d",
			replacement.ErrInvalidCapacity, b.minCapacity)
	}

	if b.maxCapacity < b.minCapacity {
		return nil, fmt.Errorf("maximum capacity %d is below minimum %d",
			b.maxCapacity, b.minCapacity)
	}

	names := make(map[string]bool)
	for _, a := range b.algorithms {
		if names[a.Name()] {
			return nil, fmt.Errorf("algorithm %s listed twice", a.Name())
		}

		names[a.Name()] = true
	}

	numWorkers := b.numWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &Sweeper{
		algorithms:  b.algorithms,
		minCapacity: b.minCapacity,
		maxCapacity: b.maxCapacity,
		numWorkers:  numWorkers,
		recorder:    b.recorder,
		progress:    b.progress,
		idGenerator: b.idGenerator,
	}, nil
}

// A Sweeper runs every algorithm at every capacity of a range. Each
// (algorithm, capacity) pair is an independent job executed by a pool of
// workers.
type Sweeper struct {
	algorithms  []replacement.Algorithm
	minCapacity int
	maxCapacity int
	numWorkers  int
	recorder    datarecording.DataRecorder
	progress    ProgressBarCreator
	idGenerator id.IDGenerator

	lock          sync.Mutex
	tablesCreated bool
	lastRunID     string
	numRuns       int
	numJobsDone   int
}

// Status is a copy of a Sweeper's counters.
type Status struct {
	Algorithms  []string
	MinCapacity int
	MaxCapacity int
	LastRunID   string
	NumRuns     int
	NumJobsDone int
}

// Status returns the current counters. It is safe to call while a sweep is
// running.
func (s *Sweeper) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	return Status{
		Algorithms:  s.AlgorithmNames(),
		MinCapacity: s.minCapacity,
		MaxCapacity: s.maxCapacity,
		LastRunID:   s.lastRunID,
		NumRuns:     s.numRuns,
		NumJobsDone: s.numJobsDone,
	}
}

// Snapshot lets a monitoring.Monitor serve the Status instead of the
// Sweeper itself.
func (s *Sweeper) Snapshot() any {
	status := s.Status()
	return &status
}

type job struct {
	index     int
	algorithm replacement.Algorithm
	capacity  int
}

// AlgorithmNames returns the names of the compared algorithms in order.
func (s *Sweeper) AlgorithmNames() []string {
	names := make([]string, 0, len(s.algorithms))
	for _, a := range s.algorithms {
		names = append(names, a.Name())
	}

	return names
}

// Run sweeps seq. The records are ordered by capacity, then by the order of
// the algorithms.
func (s *Sweeper) Run(
	ctx context.Context,
	seq refstring.Sequence,
) ([]Record, error) {
	runID := s.idGenerator.Generate()
	startTime := time.Now()

	jobs := s.makeJobs()
	records := make([]Record, len(jobs))

	var bar *monitoring.ProgressBar
	if s.progress != nil {
		bar = s.progress.CreateProgressBar("Sweep "+runID, uint64(len(jobs)))
		defer s.progress.CompleteProgressBar(bar)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	jobChan := make(chan job)

	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := range jobChan {
				record, err := s.runJob(runID, seq, j, bar)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})

					continue
				}

				records[j.index] = record
			}
		}()
	}

	s.dispatch(ctx, jobs, jobChan)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.lock.Lock()
	s.lastRunID = runID
	s.numRuns++
	s.lock.Unlock()

	if s.recorder != nil {
		s.record(runID, seq, startTime, records)
	}

	return records, nil
}

func (s *Sweeper) makeJobs() []job {
	var jobs []job

	for c := s.minCapacity; c <= s.maxCapacity; c++ {
		for _, a := range s.algorithms {
			jobs = append(jobs, job{
				index:     len(jobs),
				algorithm: a,
				capacity:  c,
			})
		}
	}

	return jobs
}

func (s *Sweeper) dispatch(ctx context.Context, jobs []job, jobChan chan<- job) {
	defer close(jobChan)

	for _, j := range jobs {
		select {
		case <-ctx.Done():
			return
		case jobChan <- j:
		}
	}
}

func (s *Sweeper) runJob(
	runID string,
	seq refstring.Sequence,
	j job,
	bar *monitoring.ProgressBar,
) (Record, error) {
	if bar != nil {
		bar.IncrementInProgress(1)
		defer bar.MoveInProgressToFinished(1)
	}

	start := time.Now()

	result, err := j.algorithm.Run(seq, j.capacity)
	if err != nil {
		return Record{}, fmt.Errorf("%s with %d frames: %w",
			j.algorithm.Name(), j.capacity, err)
	}

	s.lock.Lock()
	s.numJobsDone++
	s.lock.Unlock()

	return Record{
		RunID:     runID,
		Algorithm: j.algorithm.Name(),
		Result:    result,
		Duration:  time.Since(start),
	}, nil
}

func (s *Sweeper) record(
	runID string,
	seq refstring.Sequence,
	startTime time.Time,
	records []Record,
) {
	s.lock.Lock()
	if !s.tablesCreated {
		s.recorder.CreateTable(RunTableName, RunRow{})
		s.recorder.CreateTable(ResultTableName, Row{})
		s.tablesCreated = true
	}
	s.lock.Unlock()

	s.recorder.InsertData(RunTableName, RunRow{
		RunID:          runID,
		Sequence:       seq.String(),
		SequenceLength: len(seq),
		DistinctPages:  seq.Distinct(),
		MinCapacity:    s.minCapacity,
		MaxCapacity:    s.maxCapacity,
		Algorithms:     strings.Join(s.AlgorithmNames(), ","),
		StartTime:      startTime.Format(time.RFC3339),
	})

	for _, r := range records {
		s.recorder.InsertData(ResultTableName, r.Row())
	}

	s.recorder.Flush()
}
