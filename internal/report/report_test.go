package report

import (
	"bytes"
	"f1league/internal/aggregate"
	"f1league/internal/assets"
	"f1league/internal/calendar"
	"f1league/internal/roster"
	"f1league/internal/snapshot"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func team(name string, slot int) roster.Team {
	return roster.Team{
		Participant: roster.Participant{UUID: "u", UserID: "1"},
		Entry:       roster.TeamEntry{Name: name, Slot: slot},
	}
}

// rowWith returns the rendered line that contains needle.
func rowWith(t testing.TB, rendered, needle string) string {
	for _, line := range strings.Split(rendered, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	t.Fatalf("no line contains %q in:\n%s", needle, rendered)
	return ""
}

func TestFormats(t *testing.T) {
	require.Equal(t, "25", Integer(decimal.RequireFromString("25.9")))
	require.Equal(t, "-3", Integer(decimal.RequireFromString("-3.2")))
	require.Equal(t, "101.30", Fixed(decimal.RequireFromString("101.3")))
	require.Equal(t, "+0.3", Signed(decimal.RequireFromString("0.3")))
	require.Equal(t, "+0.0", Signed(decimal.Zero))
	require.Equal(t, "-1.2", Signed(decimal.RequireFromString("-1.2")))
}

func TestSummary(t *testing.T) {
	summary := aggregate.Summary{
		Metric:            aggregate.Points,
		Race:              3,
		Races:             []int{1, 2, 3},
		LimitlessAdjusted: true,
		Rows: []aggregate.SummaryRow{{
			Team:  team("Box Box Box", 1),
			Chips: "WC, LL",
			Values: []snapshot.Optional{
				snapshot.Some(decimal.NewFromInt(10)),
				{},
				snapshot.Some(decimal.NewFromInt(15)),
			},
			Total:    decimal.NewFromInt(25),
			HasTotal: true,
		}},
	}

	var out bytes.Buffer
	Summary(&out, summary, calendar.Locations{1: "Melbourne"})
	rendered := out.String()

	header := rowWith(t, rendered, "Team Name")
	require.Contains(t, header, "Melbourne")
	require.Contains(t, header, "R2")
	require.Contains(t, header, "Total Points (LL Adj.)")

	row := rowWith(t, rendered, "Box Box Box")
	require.Contains(t, row, "WC, LL")
	require.Contains(t, row, aggregate.Missing)
	require.Contains(t, row, "25")
	require.True(t, strings.HasPrefix(rendered, "╭"))
}

func TestSummaryBudgetHasNoTotal(t *testing.T) {
	summary := aggregate.Summary{
		Metric: aggregate.Budget,
		Races:  []int{1},
		Rows: []aggregate.SummaryRow{{
			Team:   team("Undercut", 1),
			Chips:  "–",
			Values: []snapshot.Optional{snapshot.Some(decimal.RequireFromString("101.3"))},
		}},
	}

	var out bytes.Buffer
	Summary(&out, summary, calendar.Locations{})
	rendered := out.String()
	require.NotContains(t, rendered, "Total Points")
	require.Contains(t, rowWith(t, rendered, "Undercut"), "101.30")
}

func TestCompositions(t *testing.T) {
	compositions := aggregate.Compositions{
		Race: 4,
		Rows: []aggregate.CompositionRow{{
			Team:         team("Box Box Box", 1),
			Chips:        "3x",
			Drivers:      [5]string{"VER (2x)", "NOR", "LEC", "HAM", aggregate.Placeholder},
			Constructors: [2]string{"McLaren", "Ferrari"},
		}},
	}

	var out bytes.Buffer
	Compositions(&out, compositions, calendar.Locations{})
	rendered := out.String()

	require.Contains(t, rendered, "Team Compositions for Race 4")
	require.Contains(t, rowWith(t, rendered, "Team Name"), "Constructor 2")
	row := rowWith(t, rendered, "Box Box Box")
	require.Contains(t, row, "VER (2x)")
	require.Contains(t, row, "Ferrari")
}

func TestSeries(t *testing.T) {
	series := aggregate.Series{
		Races: []int{1, 2},
		Lines: []aggregate.Line{{
			Team:   team("Undercut", 2),
			Values: []decimal.Decimal{decimal.RequireFromString("0.5"), decimal.RequireFromString("-0.25")},
		}},
	}

	var out bytes.Buffer
	Series(&out, "Budget Performance", series, calendar.Locations{2: "Jeddah"}, Signed)
	rendered := out.String()

	require.Contains(t, rendered, "Budget Performance")
	require.Contains(t, rowWith(t, rendered, "Team Name"), "Jeddah")
	row := rowWith(t, rendered, "Undercut")
	require.Contains(t, row, "T2")
	require.Contains(t, row, "+0.5")
	require.Contains(t, row, "-0.3")
}

func TestAssets(t *testing.T) {
	var out bytes.Buffer
	Assets(&out, "Driver Stats", nil)
	require.Equal(t, "No data to display.\n", out.String())

	out.Reset()
	Assets(&out, "Driver Stats", []assets.Asset{{
		Name:   "Lando Norris",
		Team:   "McLaren",
		Value:  decimal.RequireFromString("29.1"),
		Points: 120,
	}})
	row := rowWith(t, out.String(), "Lando Norris")
	require.Contains(t, row, "29.1")
	require.Contains(t, row, "120")
}

func TestRosterAndCalendar(t *testing.T) {
	var out bytes.Buffer
	Roster(&out, []roster.Participant{{
		UUID:   "aaa",
		UserID: "7",
		Teams:  []roster.TeamEntry{{Name: "Box Box Box", Slot: 1}, {Name: "Second", Slot: 2}},
	}})
	require.Contains(t, rowWith(t, out.String(), "Second"), "aaa-0-7")

	out.Reset()
	Calendar(&out, calendar.Locations{3: "Suzuka", 1: "Melbourne"})
	rendered := out.String()
	require.Less(t, strings.Index(rendered, "Melbourne"), strings.Index(rendered, "Suzuka"))
}
