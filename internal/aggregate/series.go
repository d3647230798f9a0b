package aggregate

import (
	"context"
	"f1league/internal/roster"
	"f1league/internal/snapshot"

	"github.com/shopspring/decimal"
)

// StartingBudget is every team's budget before the first race, in millions.
var StartingBudget = decimal.NewFromInt(100)

type SeriesOptions struct {
	Race int
	// AllTeams includes secondary team slots, by default only each
	// participant's primary team is included.
	AllTeams bool
}

// Line is a single team's value at every race of a Series.
type Line struct {
	Team   roster.Team
	Values []decimal.Decimal
}

type Series struct {
	Races []int
	Lines []Line
}

func (o SeriesOptions) teams(participants []roster.Participant) []roster.Team {
	var teams []roster.Team
	for _, team := range roster.Teams(participants) {
		if !o.AllTeams && !team.Primary() {
			continue
		}
		teams = append(teams, team)
	}
	return teams
}

// positional fetches every race up to race for each team and reduces it into
// a series, next receives the previous value and the race's result.
func (e Engine) positional(
	ctx context.Context,
	teams []roster.Team,
	race int,
	next func(prev decimal.Decimal, result snapshot.Result) decimal.Decimal,
) (Series, error) {
	series := Series{Races: Races(race)}
	var fetched outcome
	for _, team := range teams {
		line := Line{Team: team, Values: make([]decimal.Decimal, 0, race)}
		prev := decimal.Zero
		missing := 0
		for _, r := range series.Races {
			result := e.source.Fetch(ctx, team, r)
			fetched.add(result)
			if !result.Ok() {
				missing++
			}
			prev = next(prev, result)
			line.Values = append(line.Values, prev)
		}
		if missing > 0 {
			e.tel.ReportWarning(report_engine_series, "missing races", team.Entry.Name, missing)
		}
		series.Lines = append(series.Lines, line)
	}
	if err := fetched.err(); err != nil {
		return Series{}, err
	}
	return series, nil
}

func cumulativePoints(prev decimal.Decimal, result snapshot.Result) decimal.Decimal {
	if !result.Ok() || !result.Snapshot.Points.Present {
		return prev
	}
	return prev.Add(result.Snapshot.Points.Value)
}

func carriedBudget(prev decimal.Decimal, result snapshot.Result) decimal.Decimal {
	if !result.Ok() || !result.Snapshot.Budget.Present {
		return prev
	}
	return result.Snapshot.Budget.Value
}

// SeasonProgression is the cumulative points of each team after every race.
// A missing race carries the previous total forward.
func (e Engine) SeasonProgression(ctx context.Context, participants []roster.Participant, opts SeriesOptions) (Series, error) {
	if opts.Race < 1 {
		return Series{}, ErrInvalidRace
	}
	return e.positional(ctx, opts.teams(participants), opts.Race, cumulativePoints)
}

// PointsGap is SeasonProgression relative to the leader at every race.
func (e Engine) PointsGap(ctx context.Context, participants []roster.Participant, opts SeriesOptions) (Series, error) {
	progression, err := e.SeasonProgression(ctx, participants, opts)
	if err != nil {
		return Series{}, err
	}
	return LeaderGap(progression), nil
}

// BudgetGap is each team's budget relative to the richest team at every
// race, rounded to 2 decimals. A missing race carries the previous budget
// forward, or 0 before the first known budget.
func (e Engine) BudgetGap(ctx context.Context, participants []roster.Participant, opts SeriesOptions) (Series, error) {
	if opts.Race < 1 {
		return Series{}, ErrInvalidRace
	}
	budgets, err := e.positional(ctx, opts.teams(participants), opts.Race, carriedBudget)
	if err != nil {
		return Series{}, err
	}
	gap := LeaderGap(budgets)
	for _, line := range gap.Lines {
		for i, value := range line.Values {
			line.Values[i] = value.Round(2)
		}
	}
	return gap, nil
}

// BudgetPerformance is the race-over-race change of every team's budget,
// the first race is relative to the starting budget.
func (e Engine) BudgetPerformance(ctx context.Context, participants []roster.Participant, race int) (Series, error) {
	if race < 1 {
		return Series{}, ErrInvalidRace
	}
	budgets, err := e.positional(ctx, roster.Teams(participants), race, carriedBudget)
	if err != nil {
		return Series{}, err
	}

	out := Series{Races: budgets.Races}
	for _, line := range budgets.Lines {
		deltas := make([]decimal.Decimal, len(line.Values))
		prev := StartingBudget
		for i, value := range line.Values {
			deltas[i] = value.Sub(prev)
			prev = value
		}
		out.Lines = append(out.Lines, Line{Team: line.Team, Values: deltas})
	}
	return out, nil
}

// LeaderGap subtracts the maximum value across all lines at every race
// index, the leader at an index is always 0 there.
func LeaderGap(series Series) Series {
	out := Series{Races: series.Races}
	if len(series.Lines) == 0 {
		return out
	}

	leaders := make([]decimal.Decimal, len(series.Races))
	for i := range series.Races {
		for j, line := range series.Lines {
			if j == 0 || line.Values[i].GreaterThan(leaders[i]) {
				leaders[i] = line.Values[i]
			}
		}
	}
	for _, line := range series.Lines {
		gaps := make([]decimal.Decimal, len(line.Values))
		for i, value := range line.Values {
			gaps[i] = value.Sub(leaders[i])
		}
		out.Lines = append(out.Lines, Line{Team: line.Team, Values: gaps})
	}
	return out
}
