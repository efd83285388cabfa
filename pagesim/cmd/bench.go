package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/replacement"
)

func newBenchCmd() *cobra.Command {
	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Time every algorithm over a long reference string.",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}

	addSequenceFlags(benchCmd, 100000, 512)
	addAlgorithmFlags(benchCmd, replacement.Names())

	benchCmd.Flags().IntP("capacity", "c", 64, "number of frames")
	benchCmd.Flags().Int("repeat", 3, "number of timed runs per algorithm")

	return benchCmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	seq, err := sequenceFromFlags(cmd)
	if err != nil {
		return err
	}

	algorithms, err := algorithmsFromFlags(cmd)
	if err != nil {
		return err
	}

	capacity, _ := cmd.Flags().GetInt("capacity")
	repeat, _ := cmd.Flags().GetInt("repeat")

	if repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", repeat)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reference string: %s\nFrames: %d\n\n",
		describeSequence(seq), capacity)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "algorithm\tfaults\tmean\tfastest")

	for _, a := range algorithms {
		var (
			result  replacement.Result
			total   time.Duration
			fastest time.Duration
		)

		for i := 0; i < repeat; i++ {
			start := time.Now()

			result, err = a.Run(seq, capacity)
			if err != nil {
				return err
			}

			elapsed := time.Since(start)
			total += elapsed

			if i == 0 || elapsed < fastest {
				fastest = elapsed
			}
		}

		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\n",
			a.Name(), result.FaultCount,
			total/time.Duration(repeat), fastest)
	}

	return tw.Flush()
}
