package cmd

import (
	"f1league/cmd/league-cli/globals"
	"f1league/internal/aggregate"
	"f1league/internal/report"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	first int
	last  int
	top   int
)

func init() {
	for _, cmd := range []*cobra.Command{pointsCmd, budgetCmd} {
		cmd.Flags().IntVar(&first, "first", 0, "show the first N races")
		cmd.Flags().IntVar(&last, "last", 5, "show the last N races, 0 shows every race")
		cmd.Flags().IntVar(&top, "top", 0, "only show the top N teams")
		rootCmd.AddCommand(cmd)
	}
	addLimitlessFlags(pointsCmd)
}

func addLimitlessFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("ll-adjust", false, "add points to the total of teams that have not used Limitless yet")
	cmd.Flags().Int("ll-delta", 0, "points added by --ll-adjust, implies --ll-adjust (default: limitless_delta from the config)")
}

// limitlessOption returns the Limitless adjustment of the points summary, nil
// when it is disabled.
func limitlessOption(cmd *cobra.Command, configured int) (*int, error) {
	adjust, err := cmd.Flags().GetBool("ll-adjust")
	if err != nil {
		return nil, err
	}
	deltaSet := cmd.Flags().Changed("ll-delta")
	if !adjust && !deltaSet {
		return nil, nil
	}

	delta := configured
	if deltaSet {
		delta, err = cmd.Flags().GetInt("ll-delta")
		if err != nil {
			return nil, err
		}
		if delta < 0 {
			return nil, fmt.Errorf("--ll-delta must not be negative, got %d", delta)
		}
	}
	return &delta, nil
}

func runSummary(cmd *cobra.Command, metric aggregate.Metric) {
	ctx := globals.Get(cmd.Context())
	participants := loadRoster(cmd)
	raceNumber := resolveRace(cmd)

	opts := aggregate.SummaryOptions{
		Metric: metric,
		Race:   raceNumber,
		Window: aggregate.Window{First: first, Last: last},
		Top:    top,
	}
	if metric == aggregate.Points {
		delta, err := limitlessOption(cmd, ctx.Config.LimitlessDelta)
		if err != nil {
			fatal("invalid limitless adjustment", err)
		}
		opts.LimitlessDelta = delta
	}

	summary, err := ctx.Engine.LeagueSummary(cmd.Context(), participants, opts)
	if err != nil {
		fatalFetch(cmd, "failed to build league summary", err)
	}
	report.Summary(os.Stdout, summary, ctx.Calendar.Resolve(cmd.Context()))
}

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Points scored by every team per race, ranked by total points.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSummary(cmd, aggregate.Points)
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Budget of every team per race.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runSummary(cmd, aggregate.Budget)
	},
}
