package cmd

import (
	"f1league/cmd/league-cli/globals"
	"f1league/internal/assets"
	"f1league/internal/report"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(teamsCmd)
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Drivers and constructors picked by every team for a race.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := globals.Get(cmd.Context())
		participants := loadRoster(cmd)
		raceNumber := resolveRace(cmd)

		// unknown ids still render, only the names are lost
		list, _ := ctx.Assets.Fetch(cmd.Context(), raceNumber)

		compositions, err := ctx.Engine.TeamCompositions(cmd.Context(), participants, raceNumber, assets.NameMap(list))
		if err != nil {
			fatalFetch(cmd, "failed to build team compositions", err)
		}
		report.Compositions(os.Stdout, compositions, ctx.Calendar.Resolve(cmd.Context()))
	},
}
