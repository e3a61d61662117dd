// Package cli implements the harmonyctl command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
)

type options struct {
	key       string
	mode      string
	jazzLevel int
	asJSON    bool
}

// NewRootCmd builds the command tree writing to out
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "harmonyctl",
		Short:         "Harmonic analysis and reharmonization from the command line",
		Long:          "harmonyctl analyzes chord progressions (functions, tension, voice leading), suggests reharmonizations and simulates spaced-repetition schedules.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newFunctionsCmd(opts),
		newTensionCmd(opts),
		newVoicingCmd(opts),
		newReharmCmd(opts),
		newReviewSimCmd(opts),
		newProgressionsCmd(opts),
	)
	return root
}

func addKeyFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "tonic of the key (estimated when omitted)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", "major", "major or minor")
}

// parseChords parses symbols strictly so typos surface with a suggestion
func parseChords(args []string) ([]theory.Chord, error) {
	chords := make([]theory.Chord, 0, len(args))
	for _, arg := range args {
		chord, err := theory.ParseChord(arg)
		if err != nil {
			return nil, fmt.Errorf("chord %q: %w", arg, err)
		}
		chords = append(chords, chord)
	}
	return chords, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}
