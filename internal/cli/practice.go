package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Conceptual-Machines/harmonia-api/internal/srs"
	"github.com/Conceptual-Machines/harmonia-api/pkg/embedded"
)

// simulatedReview is one row of a review-sim run
type simulatedReview struct {
	Review      int       `json:"review"`
	Quality     int       `json:"quality"`
	Description string    `json:"quality_description"`
	State       srs.State `json:"state"`
}

func newReviewSimCmd(opts *options) *cobra.Command {
	var (
		qualities []int
		start     string
	)

	cmd := &cobra.Command{
		Use:     "review-sim",
		Short:   "Simulate an SM-2 schedule for a sequence of quality ratings",
		Example: "  harmonyctl review-sim --quality 5,5,4,2,5 --start 2026-01-05",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now().UTC().Truncate(24 * time.Hour)
			if start != "" {
				t, err := time.Parse("2006-01-02", start)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				now = t
			}

			reviews, err := simulateReviews(qualities, now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, reviews)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "#\tQUALITY\tEASE\tINTERVAL\tREPS\tNEXT REVIEW")
			for _, r := range reviews {
				fmt.Fprintf(tw, "%d\t%d\t%.2f\t%d\t%d\t%s\n", r.Review, r.Quality, r.State.EaseFactor,
					r.State.IntervalDays, r.State.Repetitions, r.State.NextReviewAt.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntSliceVarP(&qualities, "quality", "q", []int{5, 5, 5}, "quality ratings 0-5, in review order")
	cmd.Flags().StringVar(&start, "start", "", "date of the first review, YYYY-MM-DD (default today)")
	return cmd
}

// simulateReviews reviews each time the item falls due
func simulateReviews(qualities []int, start time.Time) ([]simulatedReview, error) {
	state := srs.NewState(start)
	reviews := make([]simulatedReview, 0, len(qualities))

	for i, q := range qualities {
		next, err := srs.Next(state, q, state.NextReviewAt)
		if err != nil {
			return nil, fmt.Errorf("review %d: %w", i+1, err)
		}
		state = next
		reviews = append(reviews, simulatedReview{
			Review:      i + 1,
			Quality:     q,
			Description: srs.QualityDescription(q),
			State:       state,
		})
	}
	return reviews, nil
}

func newProgressionsCmd(opts *options) *cobra.Command {
	var style string

	cmd := &cobra.Command{
		Use:   "progressions",
		Short: "List the built-in practice progressions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			progressions, err := embedded.FilterByStyle(style)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return writeJSON(out, progressions)
			}

			tw := newTable(out)
			fmt.Fprintln(tw, "ID\tSTYLE\tKEY\tLEVEL\tCHORDS")
			for _, p := range progressions {
				fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%v\n", p.ID, p.Style, p.Key, p.Mode, p.Difficulty, p.Chords)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "only list one style (jazz, pop, blues, ...)")
	return cmd
}
