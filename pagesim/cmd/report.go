package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/report"
	"github.com/sarchlab/pagesim/sweep"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <database>",
		Short: "Print a sweep recorded with `run --db`.",
		Long: "`report` reads a SQLite file written by `run --db` and prints " +
			"the fault table of one sweep, the latest by default.",
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	reportCmd.Flags().String("run", "", "ID of the sweep to print")
	reportCmd.Flags().Bool("list", false, "list the recorded sweeps")
	reportCmd.Flags().Bool("chart", false, "print a bar chart after the table")
	reportCmd.Flags().Int("chart-width", 40, "length of the longest bar")
	reportCmd.Flags().String("csv", "",
		"write the table as CSV, compressed when the name ends in .sz or .lz4")

	return reportCmd
}

func runReport(cmd *cobra.Command, args []string) error {
	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	runs, err := sweep.ListRuns(ctx, reader)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return fmt.Errorf("%s holds no sweep", args[0])
	}

	list, _ := cmd.Flags().GetBool("list")
	if list {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "run\tstarted\treferences\tframes\talgorithms")

		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d-%d\t%s\n",
				r.RunID, r.StartTime, r.SequenceLength,
				r.MinCapacity, r.MaxCapacity, r.Algorithms)
		}

		return tw.Flush()
	}

	runID, _ := cmd.Flags().GetString("run")

	run, err := findRun(runs, runID)
	if err != nil {
		return err
	}

	records, err := sweep.LoadRecords(ctx, reader, run.RunID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run %s started %s\nReference string: %s\n\n",
		run.RunID, run.StartTime, run.Sequence)

	table := report.NewTable(records)

	err = printSweepTable(cmd, table)
	if err != nil {
		return err
	}

	csvPath, _ := cmd.Flags().GetString("csv")
	if csvPath != "" {
		return writeCSVFile(csvPath, table)
	}

	return nil
}

func findRun(runs []sweep.RunRow, runID string) (sweep.RunRow, error) {
	if runID == "" {
		return runs[len(runs)-1], nil
	}

	for _, r := range runs {
		if r.RunID == runID {
			return r, nil
		}
	}

	return sweep.RunRow{}, fmt.Errorf("run %s not found", runID)
}

func printSweepTable(cmd *cobra.Command, table *report.Table) error {
	out := cmd.OutOrStdout()

	err := table.WriteText(out)
	if err != nil {
		return err
	}

	chart, _ := cmd.Flags().GetBool("chart")
	if !chart {
		return nil
	}

	width, _ := cmd.Flags().GetInt("chart-width")

	fmt.Fprintln(out)

	return table.WriteBarChart(out, width)
}
