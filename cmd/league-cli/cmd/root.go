package cmd

import (
	"context"
	"errors"
	"f1league/cmd/league-cli/globals"
	"f1league/internal/aggregate"
	"f1league/internal/assets"
	"f1league/internal/calendar"
	"f1league/internal/components/telemetry"
	"f1league/internal/config"
	"f1league/internal/fantasyapi"
	"f1league/internal/roster"
	"f1league/internal/session"
	"f1league/internal/snapshot"
	"f1league/lib/serviceutil"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	race       int
)

var shutdown = func(context.Context) error { return nil }

var exit = serviceutil.Fatal

var rootCmd = &cobra.Command{
	Use:   "league-cli",
	Short: "league-cli renders reports for a private F1 Fantasy league.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			fatal("failed to load config", err)
		}

		otel, err := telemetry.Setup(cmd.Context(), "league-cli", cfg.Telemetry)
		if err != nil {
			fatal("failed to setup telemetry", err)
		}
		shutdown = otel.Shutdown

		tel := telemetry.SlogAPI{}
		provider := session.NewProvider(cfg.CookieFile, tel)
		client, err := fantasyapi.NewClient(cfg.Upstream.Options(), provider, tel)
		if err != nil {
			fatal("failed to create fantasy client", err)
		}

		value := &globals.Value{
			Config:    cfg,
			Telemetry: tel,
			Roster: roster.NewLoader(roster.Options{
				PlayerUuid: cfg.PlayerUuid,
				LeagueId:   cfg.LeagueId,
				CachePath:  cfg.RosterCache,
			}, client, provider, tel),
			Calendar: calendar.NewResolver(client, tel),
			Assets:   assets.NewClient(client, tel),
			Engine:   aggregate.NewEngine(snapshot.NewFetcher(client, provider, tel), tel),
		}
		cmd.SetContext(globals.Set(cmd.Context(), value))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushTelemetry()
	},
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := shutdown(ctx)
	if err != nil {
		telemetry.SlogAPI{}.ReportWarning("league-cli.shutdown", err)
	}
}

// fatal exits the process, PersistentPostRun never runs after it so pending
// spans are flushed here.
func fatal(message string, err error) {
	flushTelemetry()
	exit(message, err)
}

// fatalFetch is fatal with a hint when the session cookies were rejected.
func fatalFetch(cmd *cobra.Command, message string, err error) {
	if errors.Is(err, fantasyapi.ErrAuthExpired) {
		ctx := globals.Get(cmd.Context())
		message = fmt.Sprintf("session expired, update the cookies in %s", ctx.Config.CookieFile)
	}
	fatal(message, err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default: search for league.json5)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&race, "race", 0, "race number to report on (default: the current race)")
}

func Execute() {
	err := rootCmd.ExecuteContext(serviceutil.SignalContext())
	if err != nil {
		fatal("league-cli", err)
	}
}

// resolveRace returns the --race flag, or the current race when it is unset.
// Races past the current race are rejected.
func resolveRace(cmd *cobra.Command) int {
	ctx := globals.Get(cmd.Context())
	resolved, err := ctx.Calendar.Race(cmd.Context(), race)
	if errors.Is(err, calendar.ErrNoCurrentRace) {
		fatal("no current race available, pass --race explicitly", err)
	}
	if err != nil {
		fatal("invalid --race", err)
	}
	return resolved
}

// loadRoster loads the league participants, configuration and authentication
// failures are fatal.
func loadRoster(cmd *cobra.Command) []roster.Participant {
	ctx := globals.Get(cmd.Context())
	participants, err := ctx.Roster.Load(cmd.Context())
	if errors.Is(err, roster.ErrInvalidConfig) {
		identityErr := ctx.Config.ValidateIdentity()
		if identityErr != nil {
			err = identityErr
		}
		fatal("cannot fetch the league roster", err)
	}
	if err != nil {
		fatalFetch(cmd, "failed to load the league roster", err)
	}
	return participants
}
