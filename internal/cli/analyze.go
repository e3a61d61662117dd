package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmonia-api/internal/harmony"
	"github.com/Conceptual-Machines/harmonia-api/internal/reharm"
	"github.com/Conceptual-Machines/harmonia-api/internal/tension"
	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
	"github.com/Conceptual-Machines/harmonia-api/internal/voiceleading"
)

func newFunctionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "functions CHORD...",
		Short:   "Roman numerals and harmonic functions",
		Example: "  harmonyctl functions Dm7 G7 Cmaj7 --key C",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			analysis, err := harmony.AnalyzeProgression(chords, opts.key, theory.ParseMode(opts.mode))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, analysis)
			}

			fmt.Fprintf(out, "Key: %s %s (%s)\n", analysis.Key, analysis.Mode, analysis.KeySource)
			tw := newTable(out)
			fmt.Fprintln(tw, "CHORD\tNUMERAL\tFUNCTION\tDETAIL")
			for _, cf := range analysis.ChordFunctions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cf.ChordSymbol, cf.RomanNumeral, cf.Function, cf.Detail)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Diatonic: %.1f%%  Secondary dominants: %d  Rhythm: %s\n",
				analysis.DiatonicPercentage, analysis.SecondaryDominants, analysis.HarmonicRhythm)
			return nil
		},
	}
	addKeyFlags(cmd, opts)
	return cmd
}

func newTensionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tension CHORD...",
		Short:   "Tension curve, arc shape and recommendations",
		Example: "  harmonyctl tension Dm7 G7 Cmaj7 --key C",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			key := opts.key
			if key == "" {
				key, _ = harmony.EstimateKey(chords)
			}
			curve, err := tension.AnalyzeCurve(chords, key, theory.ParseMode(opts.mode))
			if err != nil {
				return err
			}
			recommendations := tension.Recommendations(curve)

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, struct {
					tension.Curve
					Recommendations []tension.Recommendation `json:"recommendations"`
				}{curve, recommendations})
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "#\tCHORD\tTENSION\tFACTORS")
			for _, p := range curve.Points {
				fmt.Fprintf(tw, "%d\t%s\t%.3f\t%s\n", p.ChordIndex, p.Chord, p.Tension, strings.Join(p.Factors, ", "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Arc: %s  Average: %.3f  Climax: %s\n",
				curve.Summary.ArcShape, curve.Summary.AverageTension, curve.Summary.ClimaxChord)
			fmt.Fprintln(out, curve.Interpretation)
			for _, r := range recommendations {
				fmt.Fprintf(out, "- [%s] %s\n", r.Priority, r.Suggestion)
			}
			return nil
		},
	}
	addKeyFlags(cmd, opts)
	return cmd
}

func newVoicingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "voicing CHORD...",
		Short:   "Voice-leading smoothness, parallels and guide tones",
		Example: "  harmonyctl voicing Dm7 G7 Cmaj7",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			result, err := voiceleading.AnalyzeProgression(chords)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, result)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "FROM\tTO\tSMOOTHNESS\tCOMMON\tPARALLEL 5THS\tPLR")
			for i, tr := range result.Transitions {
				fmt.Fprintf(tw, "%s\t%s\t%.3f\t%d\t%d\t%s\n",
					tr.FromChord, tr.ToChord, tr.SmoothnessScore, tr.CommonTones, len(tr.ParallelFifths),
					plrLabel(voiceleading.AnalyzeNeoRiemannian(chords[i], chords[i+1])))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Overall: %.3f (%s), %d violations\n",
				result.OverallSmoothness, result.SmoothnessRating, result.TotalViolations)
			if gt := result.GuideTones; gt != nil {
				fmt.Fprintf(out, "Thirds: %s\n", strings.Join(gt.Thirds.Notes, " "))
				if gt.Sevenths != nil {
					fmt.Fprintf(out, "Sevenths: %s\n", strings.Join(gt.Sevenths.Notes, " "))
				}
			}
			return nil
		},
	}
}

// plrLabel renders a Tonnetz path as "R", "R L", "=" for no change or "-"
func plrLabel(nr voiceleading.NeoRiemannian) string {
	switch {
	case nr.TonnetzDistance == nil:
		return "-"
	case *nr.TonnetzDistance == 0:
		return "="
	}
	ops := make([]string, len(nr.PLRPath))
	for i, op := range nr.PLRPath {
		ops[i] = string(op)
	}
	return strings.Join(ops, " ")
}

func newReharmCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reharm CHORD...",
		Short:   "Reharmonization suggestions filtered by jazz level",
		Example: "  harmonyctl reharm G7 Cmaj7 --key C --jazz-level 5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chords, err := parseChords(args)
			if err != nil {
				return err
			}
			key := opts.key
			if key == "" {
				key, _ = harmony.EstimateKey(chords)
			}
			result, err := reharm.Reharmonize(chords, key, opts.jazzLevel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, result)
			}

			fmt.Fprintf(out, "Key: %s  Jazz level: %d  Suggestions: %d\n", result.Key, result.JazzLevel, result.TotalSuggestions)
			tw := newTable(out)
			fmt.Fprintln(tw, "ORIGINAL\tSUGGESTION\tTYPE\tLEVEL\tVOICE LEADING")
			for _, opt := range result.Options {
				for _, s := range opt.Suggestions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", opt.Original, s.SuggestedChord, s.Kind, s.JazzLevel, s.VoiceLeading)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "tonic of the key (estimated when omitted)")
	cmd.Flags().IntVarP(&opts.jazzLevel, "jazz-level", "j", reharm.DefaultJazzLevel, "sophistication ceiling, 1 (conservative) to 5 (adventurous)")
	return cmd
}
