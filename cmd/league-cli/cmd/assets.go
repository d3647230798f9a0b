package cmd

import (
	"errors"
	"f1league/cmd/league-cli/globals"
	"f1league/internal/assets"
	"f1league/internal/report"
	"os"

	"github.com/spf13/cobra"
)

var (
	findQuery string
	findLimit int
)

func fetchAssets(cmd *cobra.Command) []assets.Asset {
	ctx := globals.Get(cmd.Context())
	list, err := ctx.Assets.Fetch(cmd.Context(), resolveRace(cmd))
	if err != nil {
		fatal("failed to fetch the driver and constructor feed", err)
	}
	return list
}

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Stats of every active driver, most expensive first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		report.Assets(os.Stdout, "Driver Stats", assets.Drivers(fetchAssets(cmd)))
	},
}

var constructorsCmd = &cobra.Command{
	Use:   "constructors",
	Short: "Stats of every active constructor, most expensive first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		report.Assets(os.Stdout, "Constructor Stats", assets.Constructors(fetchAssets(cmd)))
	},
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Find drivers and constructors by name.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if findQuery == "" {
			fatal("missing query", errors.New("--find is required"))
		}
		report.Matches(os.Stdout, assets.Find(fetchAssets(cmd), findQuery, findLimit))
	},
}

func init() {
	assetsCmd.Flags().StringVar(&findQuery, "find", "", "name to search for")
	assetsCmd.Flags().IntVar(&findLimit, "limit", 5, "maximum number of matches")
	rootCmd.AddCommand(driversCmd, constructorsCmd, assetsCmd)
}
