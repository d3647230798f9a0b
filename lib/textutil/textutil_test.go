package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{in: "Max Verstappen", expected: "maxverstappen"},
		{in: "  Red Bull\tRacing \n", expected: "redbullracing"},
		{in: "", expected: ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeName(test.in), test.in)
	}
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("Lando Norris", []string{"norris"}))
	require.True(t, MatchName("Lando Norris", []string{"xyz", "lando"}))
	require.False(t, MatchName("Lando Norris", []string{"hamilton"}))
	require.False(t, MatchName("Lando Norris", nil))
}
