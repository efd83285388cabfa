package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/refstring"
	"github.com/sarchlab/pagesim/replacement"
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run every algorithm on the textbook reference string.",
		Long: "`check` runs every algorithm on " + refstring.Textbook +
			" with 3 frames, prints the fault counts and fails if the two " +
			"LRU implementations disagree.",
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	checkCmd.Flags().StringP("sequence", "s", refstring.Textbook,
		"reference string to check")
	checkCmd.Flags().IntP("capacity", "c", 3, "number of frames")

	return checkCmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	text, _ := cmd.Flags().GetString("sequence")
	capacity, _ := cmd.Flags().GetInt("capacity")

	seq, err := refstring.Parse(text)
	if err != nil {
		return err
	}

	results := make(map[string]replacement.Result)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reference string: %s\nFrames: %d\n\n",
		describeSequence(seq), capacity)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "algorithm\tfaults\thits\tfault rate")

	for _, name := range replacement.Names() {
		a, err := replacement.ByName(name)
		if err != nil {
			return err
		}

		result, err := a.Run(seq, capacity)
		if err != nil {
			return err
		}

		results[name] = result

		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\n",
			name, result.FaultCount, result.HitCount(), result.FaultRate())
	}

	err = tw.Flush()
	if err != nil {
		return err
	}

	counter := results["counter-lru"].FaultCount
	stack := results["stack-lru"].FaultCount

	if counter != stack {
		return fmt.Errorf("LRU implementations disagree: counter-lru %d, "+
			"stack-lru %d", counter, stack)
	}

	fmt.Fprintf(out, "\nBoth LRU implementations report %d faults.\n", counter)

	return nil
}
