package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/refstring"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
	"github.com/sarchlab/pagesim/sweep"
)

const maxPrintedSequenceLength = 80

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Count page faults over a range of frame counts.",
		Long: "`run` generates or parses a reference string and runs every " +
			"selected algorithm with every frame count from --min-capacity " +
			"to --max-capacity.",
		Args: cobra.NoArgs,
		RunE: runSweep,
	}

	addSequenceFlags(runCmd, refstring.DefaultLength,
		refstring.DefaultAlphabetSize)
	addAlgorithmFlags(runCmd, defaultAlgorithmNames())

	runCmd.Flags().Int("min-capacity", 1, "smallest number of frames")
	runCmd.Flags().Int("max-capacity", 7, "largest number of frames")
	runCmd.Flags().Int("workers", 0,
		"number of runs executed in parallel, GOMAXPROCS when 0")
	runCmd.Flags().Bool("chart", false, "print a bar chart after the table")
	runCmd.Flags().Int("chart-width", 40, "length of the longest bar")
	runCmd.Flags().String("db", "",
		"record the sweep into this SQLite file, appending if it exists")
	runCmd.Flags().String("csv", "",
		"write the table as CSV, compressed when the name ends in .sz or .lz4")
	runCmd.Flags().Bool("trace", false,
		"count page hits, loads and evictions of every algorithm, summed "+
			"over all frame counts")
	runCmd.Flags().Bool("monitor", false,
		"serve the sweep progress over HTTP")
	runCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring server, random when 0")
	runCmd.Flags().Bool("open-browser", false,
		"open the monitoring server in a browser")
	runCmd.Flags().Bool("hold", false,
		"keep the monitoring server running until interrupted")

	return runCmd
}

func runSweep(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	seq, err := sequenceFromFlags(cmd)
	if err != nil {
		return err
	}

	algorithms, err := algorithmsFromFlags(cmd)
	if err != nil {
		return err
	}

	minCapacity, _ := cmd.Flags().GetInt("min-capacity")
	maxCapacity, _ := cmd.Flags().GetInt("max-capacity")
	workers, _ := cmd.Flags().GetInt("workers")

	builder := sweep.MakeBuilder().
		WithAlgorithms(algorithms...).
		WithCapacityRange(minCapacity, maxCapacity)
	if workers > 0 {
		builder = builder.WithWorkers(workers)
	}

	trace, _ := cmd.Flags().GetBool("trace")

	var tracers map[string]*hooking.EventCountTracer
	if trace {
		tracers = attachTracers(algorithms)
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath != "" {
		recorder, err := openRecorder(dbPath)
		if err != nil {
			return err
		}
		defer recorder.Close()

		builder = builder.WithRecorder(recorder)
	}

	monitorOn, _ := cmd.Flags().GetBool("monitor")

	var monitor *monitoring.Monitor
	if monitorOn {
		port, _ := cmd.Flags().GetInt("monitor-port")
		monitor = monitoring.NewMonitor().WithPortNumber(port)
		builder = builder.WithProgressBarCreator(monitor)
	}

	sweeper, err := builder.Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if monitor != nil {
		monitor.RegisterObject("sweeper", sweeper)

		url := monitor.StartServer()
		defer monitor.StopServer(context.Background())

		openBrowser, _ := cmd.Flags().GetBool("open-browser")
		if openBrowser {
			err := browser.OpenURL(url)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"Cannot open %s in a browser: %v\n", url, err)
			}
		}
	}

	records, err := sweeper.Run(ctx, seq)
	if err != nil {
		return err
	}

	table := report.NewTable(records)

	fmt.Fprintf(out, "Reference string: %s\n\n", describeSequence(seq))

	err = printSweepTable(cmd, table)
	if err != nil {
		return err
	}

	if trace {
		printTraces(out, algorithms, tracers)
	}

	csvPath, _ := cmd.Flags().GetString("csv")
	if csvPath != "" {
		err = writeCSVFile(csvPath, table)
		if err != nil {
			return err
		}
	}

	hold, _ := cmd.Flags().GetBool("hold")
	if monitor != nil && hold {
		fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop monitoring.")
		<-ctx.Done()
	}

	return nil
}

func describeSequence(seq refstring.Sequence) string {
	text := seq.String()
	if len(text) > maxPrintedSequenceLength {
		text = text[:maxPrintedSequenceLength] + "..."
	}

	return fmt.Sprintf("%s (%d references, %d distinct pages)",
		text, seq.Len(), seq.Distinct())
}

func attachTracers(
	algorithms []replacement.Algorithm,
) map[string]*hooking.EventCountTracer {
	tracers := make(map[string]*hooking.EventCountTracer)

	for _, a := range algorithms {
		h, ok := a.(hooking.Hookable)
		if !ok {
			continue
		}

		tracer := hooking.NewEventCountTracer()
		h.AcceptHook(tracer)
		tracers[a.Name()] = tracer
	}

	return tracers
}

func printTraces(
	out io.Writer,
	algorithms []replacement.Algorithm,
	tracers map[string]*hooking.EventCountTracer,
) {
	positions := []*hooking.HookPos{
		replacement.HookPosPageHit,
		replacement.HookPosPageLoad,
		replacement.HookPosPageEvict,
	}

	fmt.Fprintln(out)

	for _, a := range algorithms {
		tracer, ok := tracers[a.Name()]
		if !ok {
			continue
		}

		counts := make([]string, 0, len(positions))
		for _, pos := range positions {
			counts = append(counts,
				fmt.Sprintf("%s=%d", pos.Name, tracer.GetCount(pos.Name)))
		}

		fmt.Fprintf(out, "%s: %s\n", a.Name(), strings.Join(counts, " "))
	}
}

// openRecorder appends to an existing database or creates a new one.
func openRecorder(path string) (datarecording.DataRecorder, error) {
	name := strings.TrimSuffix(path, ".sqlite3")
	filename := name + ".sqlite3"

	_, err := os.Stat(filename)
	if err != nil {
		return datarecording.New(name), nil
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}

	fmt.Fprintf(os.Stderr, "Appending to database: %s\n", filename)

	return datarecording.NewWithDB(db), nil
}

func writeCSVFile(path string, table *report.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = table.WriteCompressedCSV(f, report.CodecForFile(path))
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
