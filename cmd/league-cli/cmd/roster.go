package cmd

import (
	"f1league/cmd/league-cli/globals"
	"f1league/internal/report"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rosterCmd, calendarCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "List every team in the league, fetching the roster cache if it is missing.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		report.Roster(os.Stdout, loadRoster(cmd))
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List the season's race locations.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := globals.Get(cmd.Context())
		report.Calendar(os.Stdout, ctx.Calendar.Resolve(cmd.Context()))
	},
}
