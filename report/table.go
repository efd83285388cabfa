// Package report turns sweep records into tables and charts that compare
// algorithms across frame capacities.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/pagesim/sweep"
)

// A Table holds fault counts with one row per capacity and one column per
// algorithm.
type Table struct {
	Algorithms     []string
	Capacities     []int
	SequenceLength int

	faults map[int]map[string]int
}

// NewTable pivots the records of one sweep. Algorithms keep the order in
// which they first appear, capacities are sorted.
func NewTable(records []sweep.Record) *Table {
	t := &Table{
		faults: make(map[int]map[string]int),
	}

	seenAlgorithm := make(map[string]bool)

	for _, r := range records {
		capacity := r.Result.Capacity

		if !seenAlgorithm[r.Algorithm] {
			seenAlgorithm[r.Algorithm] = true
			t.Algorithms = append(t.Algorithms, r.Algorithm)
		}

		row, ok := t.faults[capacity]
		if !ok {
			row = make(map[string]int)
			t.faults[capacity] = row
			t.Capacities = append(t.Capacities, capacity)
		}

		row[r.Algorithm] = r.Result.FaultCount
		t.SequenceLength = r.Result.SequenceLength
	}

	sort.Ints(t.Capacities)

	return t
}

// FaultCount returns the number of faults of an algorithm at a capacity.
func (t *Table) FaultCount(capacity int, algorithm string) (int, bool) {
	n, ok := t.faults[capacity][algorithm]
	return n, ok
}

// MaxFaultCount returns the largest fault count in the table.
func (t *Table) MaxFaultCount() int {
	maxFaults := 0

	for _, row := range t.faults {
		for _, n := range row {
			if n > maxFaults {
				maxFaults = n
			}
		}
	}

	return maxFaults
}

func (t *Table) cell(capacity int, algorithm string) string {
	n, ok := t.FaultCount(capacity, algorithm)
	if !ok {
		return "-"
	}

	return strconv.Itoa(n)
}

// WriteText writes an aligned, human-readable table.
func (t *Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := append([]string{"frames"}, t.Algorithms...)
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for _, c := range t.Capacities {
		fields := []string{strconv.Itoa(c)}
		for _, a := range t.Algorithms {
			fields = append(fields, t.cell(c, a))
		}

		fmt.Fprintln(tw, strings.Join(fields, "\t")+"\t")
	}

	return tw.Flush()
}

// WriteCSV writes the table as CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Capacity"}, t.Algorithms...)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range t.Capacities {
		fields := []string{strconv.Itoa(c)}
		for _, a := range t.Algorithms {
			n, ok := t.FaultCount(c, a)
			if ok {
				fields = append(fields, strconv.Itoa(n))
			} else {
				fields = append(fields, "")
			}
		}

		if err := cw.Write(fields); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
