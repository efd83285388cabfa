package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/pagesim/refstring"
	"github.com/sarchlab/pagesim/replacement"
)

func addSequenceFlags(cmd *cobra.Command, defaultLength, defaultAlphabet int) {
	cmd.Flags().StringP("sequence", "s", "",
		"reference string, as digits (\"7012\") or a list (\"7,0,1,2\"); "+
			"generated at random when empty")
	cmd.Flags().Int("length", defaultLength,
		"length of the generated reference string")
	cmd.Flags().Int("alphabet", defaultAlphabet,
		"number of different pages in the generated reference string")
	cmd.Flags().Int64("seed", 0,
		"seed of the generated reference string, random when 0")
}

func sequenceFromFlags(cmd *cobra.Command) (refstring.Sequence, error) {
	text, _ := cmd.Flags().GetString("sequence")
	if text != "" {
		return refstring.Parse(text)
	}

	length, _ := cmd.Flags().GetInt("length")
	alphabet, _ := cmd.Flags().GetInt("alphabet")
	seed, _ := cmd.Flags().GetInt64("seed")

	g := refstring.MakeGenerator().WithAlphabetSize(alphabet)
	if seed != 0 {
		g = g.WithSeed(seed)
	}

	return g.Generate(length)
}

func addAlgorithmFlags(cmd *cobra.Command, defaults []string) {
	cmd.Flags().StringSliceP("algorithms", "a", defaults,
		"algorithms to compare, from "+strings.Join(replacement.Names(), ", "))
	cmd.Flags().String("opt-tie-break",
		replacement.TieBreakFarthestNextUse.String(),
		"how opt picks a victim when every resident page is used again: "+
			"farthest-next-use or page-id")
}

func algorithmsFromFlags(cmd *cobra.Command) ([]replacement.Algorithm, error) {
	names, _ := cmd.Flags().GetStringSlice("algorithms")
	tieBreakName, _ := cmd.Flags().GetString("opt-tie-break")

	tieBreak, err := replacement.ParseTieBreak(tieBreakName)
	if err != nil {
		return nil, err
	}

	var algorithms []replacement.Algorithm

	selected := make(map[string]string)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		a, err := replacement.ByName(name)
		if err != nil {
			return nil, err
		}

		if opt, ok := a.(*replacement.Optimal); ok && name == "opt" {
			opt.WithTieBreak(tieBreak)
		}

		first, dup := selected[a.Name()]
		if dup && first == name {
			return nil, fmt.Errorf("algorithm %s selected twice", name)
		}

		if dup {
			return nil, fmt.Errorf(
				"%s and %s both run as %s with --opt-tie-break=%s",
				first, name, a.Name(), tieBreak)
		}

		selected[a.Name()] = name
		algorithms = append(algorithms, a)
	}

	if len(algorithms) == 0 {
		return nil, errors.New("no algorithm selected")
	}

	return algorithms, nil
}

func defaultAlgorithmNames() []string {
	var names []string
	for _, a := range replacement.Defaults() {
		names = append(names, a.Name())
	}

	return names
}
