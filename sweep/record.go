package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/replacement"
)

// Table names used when a sweep is recorded.
const (
	ResultTableName = "fault_results"
	RunTableName    = "runs"
)

// A Record is the result of one algorithm at one capacity within a sweep.
type Record struct {
	RunID     string
	Algorithm string
	Result    replacement.Result
	Duration  time.Duration
}

// Row is the flattened form of a Record stored in the database.
type Row struct {
	RunID          string
	Algorithm      string
	SequenceLength int
	Capacity       int
	FaultCount     int
	DurationNS     int64
}

// RunRow describes one sweep in the database.
type RunRow struct {
	RunID          string
	Sequence       string
	SequenceLength int
	DistinctPages  int
	MinCapacity    int
	MaxCapacity    int
	Algorithms     string
	StartTime      string
}

// Row flattens the record.
func (r Record) Row() Row {
	return Row{
		RunID:          r.RunID,
		Algorithm:      r.Algorithm,
		SequenceLength: r.Result.SequenceLength,
		Capacity:       r.Result.Capacity,
		FaultCount:     r.Result.FaultCount,
		DurationNS:     r.Duration.Nanoseconds(),
	}
}

// Record restores the record that produced the row.
func (r Row) Record() Record {
	return Record{
		RunID:     r.RunID,
		Algorithm: r.Algorithm,
		Result: replacement.Result{
			SequenceLength: r.SequenceLength,
			Capacity:       r.Capacity,
			FaultCount:     r.FaultCount,
		},
		Duration: time.Duration(r.DurationNS),
	}
}

// LoadRecords reads the records of a run back from a database. An empty
// runID loads every run.
func LoadRecords(
	ctx context.Context,
	reader datarecording.DataReader,
	runID string,
) ([]Record, error) {
	reader.MapTable(ResultTableName, Row{})

	params := datarecording.QueryParams{
		OrderBy: "RunID ASC, Capacity ASC, rowid ASC",
	}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	results, _, err := reader.Query(ctx, ResultTableName, params)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}

	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, r.(*Row).Record())
	}

	return records, nil
}

// ListRuns reads the description of every recorded run, oldest first.
func ListRuns(
	ctx context.Context,
	reader datarecording.DataReader,
) ([]RunRow, error) {
	reader.MapTable(RunTableName, RunRow{})

	results, _, err := reader.Query(ctx, RunTableName,
		datarecording.QueryParams{OrderBy: "rowid ASC"})
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	runs := make([]RunRow, 0, len(results))
	for _, r := range results {
		runs = append(runs, *r.(*RunRow))
	}

	return runs, nil
}
