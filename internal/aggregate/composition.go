package aggregate

import (
	"context"
	"f1league/internal/chips"
	"f1league/internal/roster"
	"f1league/internal/snapshot"
	"fmt"
	"slices"
)

const (
	DriverSlots      = 5
	ConstructorSlots = 2

	// Placeholder pads a composition with fewer entries than slots.
	Placeholder = "⚠️"
	// HttpFailure and ParseFailure fill a composition that could not be
	// fetched.
	HttpFailure  = "❌"
	ParseFailure = "⚠️"
)

type CompositionRow struct {
	Team         roster.Team
	Chips        string
	Drivers      [DriverSlots]string
	Constructors [ConstructorSlots]string
	// Failure is set when the snapshot could not be fetched, every other
	// cell then holds the failure marker.
	Failure *snapshot.FetchFailure
}

// Cells returns the row's cells after the team name.
func (r CompositionRow) Cells() []string {
	cells := make([]string, 0, 1+DriverSlots+ConstructorSlots)
	cells = append(cells, r.Chips)
	cells = append(cells, r.Drivers[:]...)
	cells = append(cells, r.Constructors[:]...)
	return cells
}

type Compositions struct {
	Race int
	Rows []CompositionRow
}

func failureMarker(failure *snapshot.FetchFailure) string {
	if failure.Reason == snapshot.ParseError {
		return ParseFailure
	}
	return HttpFailure
}

func assetName(names map[int]string, position snapshot.RosterPosition) string {
	name, ok := names[position.AssetId]
	if !ok {
		name = fmt.Sprintf("Unknown (%d)", position.AssetId)
	}
	if position.Captain {
		name += " (2x)"
	}
	if position.MegaCaptain {
		name += " (3x)"
	}
	return name
}

// TeamCompositions lists the drivers and constructors picked by every team
// for a race, names resolves asset ids into display names.
func (e Engine) TeamCompositions(ctx context.Context, participants []roster.Participant, race int, names map[int]string) (Compositions, error) {
	if race < 1 {
		return Compositions{}, ErrInvalidRace
	}

	out := Compositions{Race: race}
	var fetched outcome
	for _, team := range roster.Teams(participants) {
		result := e.source.Fetch(ctx, team, race)
		fetched.add(result)
		if !result.Ok() {
			out.Rows = append(out.Rows, failedComposition(team, result.Failure))
			continue
		}
		out.Rows = append(out.Rows, e.composition(team, result.Snapshot, race, names))
	}
	if err := fetched.err(); err != nil {
		return Compositions{}, err
	}
	return out, nil
}

func failedComposition(team roster.Team, failure *snapshot.FetchFailure) CompositionRow {
	marker := failureMarker(failure)
	row := CompositionRow{Team: team, Chips: marker, Failure: failure}
	for i := range row.Drivers {
		row.Drivers[i] = marker
	}
	for i := range row.Constructors {
		row.Constructors[i] = marker
	}
	return row
}

func (e Engine) composition(team roster.Team, s snapshot.RaceSnapshot, race int, names map[int]string) CompositionRow {
	positions := slices.Clone(s.Roster)
	slices.SortStableFunc(positions, func(a, b snapshot.RosterPosition) int {
		return a.Position - b.Position
	})

	var drivers, constructors []string
	for _, position := range positions {
		switch {
		case position.Position >= 1 && position.Position <= DriverSlots:
			drivers = append(drivers, assetName(names, position))
		case position.Position > DriverSlots && position.Position <= DriverSlots+ConstructorSlots:
			constructors = append(constructors, assetName(names, position))
		default:
			e.tel.ReportWarning(report_engine_composition, "unexpected roster position", team.Entry.Name, position.Position)
		}
	}

	row := CompositionRow{
		Team:  team,
		Chips: chips.Summary(s.Chips, race, chips.Exact),
	}
	for i := range row.Drivers {
		row.Drivers[i] = Placeholder
		if i < len(drivers) {
			row.Drivers[i] = drivers[i]
		}
	}
	for i := range row.Constructors {
		row.Constructors[i] = Placeholder
		if i < len(constructors) {
			row.Constructors[i] = constructors[i]
		}
	}
	return row
}
