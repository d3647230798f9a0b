// Package report renders aggregated league data as console tables.
package report

import (
	"f1league/internal/aggregate"
	"f1league/internal/assets"
	"f1league/internal/calendar"
	"f1league/internal/roster"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault
	t.SetOutputMirror(w)
	return t
}

// alignColumns left aligns the first `left` columns and right aligns the
// remaining ones up to total.
func alignColumns(t table.Writer, left, total int) {
	configs := make([]table.ColumnConfig, 0, total)
	for i := 1; i <= total; i++ {
		align := text.AlignRight
		if i <= left {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Align:       align,
			AlignHeader: align,
		})
	}
	t.SetColumnConfigs(configs)
}

// Format renders a single series value.
type Format func(decimal.Decimal) string

// Integer truncates to a whole number, ex. points.
func Integer(d decimal.Decimal) string {
	return d.Truncate(0).String()
}

// Fixed renders a value with exactly 2 decimals, ex. budgets.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Signed renders a delta with an explicit sign and 1 decimal, ex. "+0.3".
func Signed(d decimal.Decimal) string {
	d = d.Round(1)
	if d.IsNegative() {
		return d.StringFixed(1)
	}
	return "+" + d.StringFixed(1)
}

func raceHeaders(races []int, locations calendar.Locations) table.Row {
	row := make(table.Row, len(races))
	for i, race := range races {
		row[i] = locations.RaceLabel(race)
	}
	return row
}

func Summary(w io.Writer, summary aggregate.Summary, locations calendar.Locations) {
	t := NewTable(w)

	header := table.Row{"Team Name", "Chips"}
	header = append(header, raceHeaders(summary.Races, locations)...)
	hasTotal := summary.Metric == aggregate.Points
	if hasTotal {
		title := "Total Points"
		if summary.LimitlessAdjusted {
			title = "Total Points (LL Adj.)"
		}
		header = append(header, title)
	}
	t.AppendHeader(header)

	format := Integer
	if summary.Metric == aggregate.Budget {
		format = Fixed
	}
	for _, row := range summary.Rows {
		cells := table.Row{row.Team.Entry.Name, row.Chips}
		for _, value := range row.Values {
			if !value.Present {
				cells = append(cells, aggregate.Missing)
				continue
			}
			cells = append(cells, format(value.Value))
		}
		if hasTotal {
			cells = append(cells, Integer(row.Total))
		}
		t.AppendRow(cells)
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

func Compositions(w io.Writer, compositions aggregate.Compositions, locations calendar.Locations) {
	t := NewTable(w)
	t.SetTitle("Team Compositions for %s", locations.Label(compositions.Race, fmt.Sprintf("Race %d", compositions.Race)))

	header := table.Row{"Team Name", "Chips"}
	for i := 1; i <= aggregate.DriverSlots; i++ {
		header = append(header, fmt.Sprintf("Driver %d", i))
	}
	for i := 1; i <= aggregate.ConstructorSlots; i++ {
		header = append(header, fmt.Sprintf("Constructor %d", i))
	}
	t.AppendHeader(header)

	for _, row := range compositions.Rows {
		cells := table.Row{row.Team.Entry.Name}
		for _, cell := range row.Cells() {
			cells = append(cells, cell)
		}
		t.AppendRow(cells)
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

// Series renders one row per team and one column per race.
func Series(w io.Writer, title string, series aggregate.Series, locations calendar.Locations, format Format) {
	t := NewTable(w)
	t.SetTitle(title)

	header := table.Row{"Team Name", "Team"}
	header = append(header, raceHeaders(series.Races, locations)...)
	t.AppendHeader(header)

	for _, line := range series.Lines {
		cells := table.Row{line.Team.Entry.Name, fmt.Sprintf("T%d", line.Team.Entry.Slot)}
		for _, value := range line.Values {
			cells = append(cells, format(value))
		}
		t.AppendRow(cells)
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

func Assets(w io.Writer, title string, list []assets.Asset) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No data to display.")
		return
	}

	t := NewTable(w)
	t.SetTitle(title)
	header := table.Row{
		"Name", "Team", "Value (M)", "Total Points", "Position Points",
		"DNF/DQ", "Overtaking", "Fastest Lap", "DotD", "Value for Money",
	}
	t.AppendHeader(header)
	for _, asset := range list {
		t.AppendRow(table.Row{
			asset.Name,
			asset.Team,
			asset.Value.StringFixed(1),
			asset.Points,
			asset.Stats.PositionPoints,
			asset.Stats.DnfDqPoints,
			asset.Stats.OvertakingPoints,
			asset.Stats.FastestLapPoints,
			asset.Stats.DotdPoints,
			asset.Stats.ValueForMoney.String(),
		})
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

func Matches(w io.Writer, matches []assets.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matches.")
		return
	}

	t := NewTable(w)
	header := table.Row{"Name", "Kind", "Id", "Value (M)", "Similarity"}
	t.AppendHeader(header)
	for _, match := range matches {
		t.AppendRow(table.Row{
			match.Asset.Name,
			match.Asset.Kind.String(),
			match.Asset.Id,
			match.Asset.Value.StringFixed(1),
			strconv.FormatFloat(match.Similarity, 'f', 3, 64),
		})
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

func Roster(w io.Writer, participants []roster.Participant) {
	t := NewTable(w)
	header := table.Row{"Team Name", "Participant", "Team"}
	t.AppendHeader(header)
	for _, team := range roster.Teams(participants) {
		t.AppendRow(table.Row{
			team.Entry.Name,
			team.Participant.Guid(),
			fmt.Sprintf("T%d", team.Entry.Slot),
		})
	}

	alignColumns(t, 2, len(header))
	t.Render()
}

func Calendar(w io.Writer, locations calendar.Locations) {
	races := make([]int, 0, len(locations))
	for race := range locations {
		races = append(races, race)
	}
	slices.Sort(races)

	t := NewTable(w)
	header := table.Row{"Race", "Location"}
	t.AppendHeader(header)
	for _, race := range races {
		t.AppendRow(table.Row{race, locations[race]})
	}

	alignColumns(t, 2, len(header))
	t.Render()
}
