package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestLimitlessOption(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected *int
		err      bool
	}{
		{name: "disabled"},
		{name: "configured delta", args: []string{"--ll-adjust"}, expected: intPtr(128)},
		{name: "explicit delta", args: []string{"--ll-delta", "50"}, expected: intPtr(50)},
		{name: "both", args: []string{"--ll-adjust", "--ll-delta=0"}, expected: intPtr(0)},
		{name: "negative delta", args: []string{"--ll-delta=-1"}, err: true},
		{name: "negative delta with adjust", args: []string{"--ll-adjust", "--ll-delta=-40"}, err: true},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "points"}
			addLimitlessFlags(cmd)
			require.NoError(t, cmd.ParseFlags(test.args))

			delta, err := limitlessOption(cmd, 128)
			if test.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, delta)
		})
	}
}

func intPtr(n int) *int {
	return &n
}
