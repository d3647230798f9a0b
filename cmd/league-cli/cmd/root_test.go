package cmd

import (
	"context"
	"errors"
	"f1league/cmd/league-cli/globals"
	"f1league/internal/config"
	"f1league/internal/fantasyapi"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// stubExit records fatal exits and telemetry flushes in the order they
// happen.
func stubExit(t *testing.T) *[]string {
	t.Helper()
	prevExit, prevShutdown := exit, shutdown
	t.Cleanup(func() {
		exit, shutdown = prevExit, prevShutdown
	})

	var events []string
	shutdown = func(context.Context) error {
		events = append(events, "shutdown")
		return nil
	}
	exit = func(message string, err error) {
		events = append(events, "exit: "+message)
	}
	return &events
}

func TestFatalFlushesTelemetry(t *testing.T) {
	events := stubExit(t)

	fatal("failed to build league summary", errors.New("boom"))
	require.Equal(t, []string{"shutdown", "exit: failed to build league summary"}, *events)
}

func TestFatalFetchSessionHint(t *testing.T) {
	events := stubExit(t)

	cmd := &cobra.Command{}
	cmd.SetContext(globals.Set(context.Background(), &globals.Value{
		Config: config.Config{CookieFile: "cookies.json"},
	}))

	fatalFetch(cmd, "failed to build season", fmt.Errorf("%w: all 4 fetches were rejected", fantasyapi.ErrAuthExpired))
	fatalFetch(cmd, "failed to build season", errors.New("boom"))
	require.Equal(t, []string{
		"shutdown",
		"exit: session expired, update the cookies in cookies.json",
		"shutdown",
		"exit: failed to build season",
	}, *events)
}
