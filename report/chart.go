package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteBarChart draws a horizontal bar per algorithm for every capacity. The
// longest bar is width characters.
func (t *Table) WriteBarChart(w io.Writer, width int) error {
	if width < 1 {
		return fmt.Errorf("chart width must be positive, got %d", width)
	}

	maxFaults := t.MaxFaultCount()

	nameWidth := 0
	for _, a := range t.Algorithms {
		if len(a) > nameWidth {
			nameWidth = len(a)
		}
	}

	for _, c := range t.Capacities {
		if _, err := fmt.Fprintf(w, "%d frames\n", c); err != nil {
			return err
		}

		for _, a := range t.Algorithms {
			n, ok := t.FaultCount(c, a)
			if !ok {
				continue
			}

			length := 0
			if maxFaults > 0 {
				length = (n*width + maxFaults/2) / maxFaults
			}

			_, err := fmt.Fprintf(w, "  %-*s |%s %d\n",
				nameWidth, a, strings.Repeat("#", length), n)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
