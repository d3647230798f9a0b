package cmd

import (
	"context"
	"f1league/cmd/league-cli/globals"
	"f1league/internal/aggregate"
	"f1league/internal/report"
	"f1league/internal/roster"
	"os"

	"github.com/spf13/cobra"
)

var allTeams bool

type seriesBuilder func(ctx context.Context, engine aggregate.Engine, participants []roster.Participant, raceNumber int) (aggregate.Series, error)

func seriesCommand(use, short, title string, format report.Format, build seriesBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := globals.Get(cmd.Context())
			participants := loadRoster(cmd)
			raceNumber := resolveRace(cmd)

			series, err := build(cmd.Context(), ctx.Engine, participants, raceNumber)
			if err != nil {
				fatalFetch(cmd, "failed to build "+use, err)
			}
			report.Series(os.Stdout, title, series, ctx.Calendar.Resolve(cmd.Context()), format)
		},
	}
}

func seriesOptions(raceNumber int) aggregate.SeriesOptions {
	return aggregate.SeriesOptions{Race: raceNumber, AllTeams: allTeams}
}

func init() {
	seasonCmd := seriesCommand(
		"season",
		"Cumulative points of every team after each race.",
		"Cumulative Points per Race",
		report.Integer,
		func(ctx context.Context, engine aggregate.Engine, participants []roster.Participant, raceNumber int) (aggregate.Series, error) {
			return engine.SeasonProgression(ctx, participants, seriesOptions(raceNumber))
		},
	)
	pointsGapCmd := seriesCommand(
		"gap-points",
		"Cumulative points behind the leader after each race.",
		"Cumulative Point Gap from Race Leader",
		report.Integer,
		func(ctx context.Context, engine aggregate.Engine, participants []roster.Participant, raceNumber int) (aggregate.Series, error) {
			return engine.PointsGap(ctx, participants, seriesOptions(raceNumber))
		},
	)
	budgetGapCmd := seriesCommand(
		"gap-budget",
		"Budget behind the richest team after each race.",
		"Budget Gap from Leader per Race",
		report.Fixed,
		func(ctx context.Context, engine aggregate.Engine, participants []roster.Participant, raceNumber int) (aggregate.Series, error) {
			return engine.BudgetGap(ctx, participants, seriesOptions(raceNumber))
		},
	)
	performanceCmd := seriesCommand(
		"budget-performance",
		"Race-by-race change in budget of every team.",
		"Race-by-Race Budget Performance Delta per Team",
		report.Signed,
		func(ctx context.Context, engine aggregate.Engine, participants []roster.Participant, raceNumber int) (aggregate.Series, error) {
			return engine.BudgetPerformance(ctx, participants, raceNumber)
		},
	)

	for _, cmd := range []*cobra.Command{seasonCmd, pointsGapCmd, budgetGapCmd} {
		cmd.Flags().BoolVar(&allTeams, "all-teams", false, "include every team slot, not just primary teams")
	}
	rootCmd.AddCommand(seasonCmd, pointsGapCmd, budgetGapCmd, performanceCmd)
}
