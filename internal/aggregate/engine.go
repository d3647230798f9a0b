// Package aggregate reduces per-team-per-race snapshots into the league's
// report rows.
package aggregate

import (
	"context"
	"errors"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/internal/roster"
	"f1league/internal/snapshot"
	"fmt"
)

const (
	report_engine_summary     = "engine.league-summary"
	report_engine_composition = "engine.team-compositions"
	report_engine_series      = "engine.series"
)

// Missing is displayed in place of a value that could not be fetched.
const Missing = "–"

var ErrInvalidRace = errors.New("aggregate: race number must be at least 1")

// Source fetches a single team's snapshot for a race, failures are carried
// in the result.
type Source interface {
	Fetch(ctx context.Context, team roster.Team, race int) snapshot.Result
}

// Engine builds every report, its only dependency is the snapshot source so
// a total upstream outage degrades to missing values instead of an error.
type Engine struct {
	source Source
	tel    telemetry.API
}

func NewEngine(source Source, tel telemetry.API) Engine {
	assert.NotNil(source)
	assert.NotNil(tel)
	return Engine{
		source: source,
		tel:    telemetry.NewScopedAPI("aggregate", tel),
	}
}

// outcome counts the fetches behind a single report.
type outcome struct {
	fetched int
	expired int
}

func (o *outcome) add(result snapshot.Result) {
	o.fetched++
	if result.AuthExpired() {
		o.expired++
	}
}

// err fails the report when the session was rejected on every fetch, there
// is nothing to display in that case.
func (o outcome) err() error {
	if o.fetched == 0 || o.expired < o.fetched {
		return nil
	}
	return fmt.Errorf("%w: all %d fetches were rejected", snapshot.ErrAuthExpired, o.fetched)
}

// fetchRaces fetches every race in races for a team, keyed by race number.
func (e Engine) fetchRaces(ctx context.Context, team roster.Team, races []int, fetched *outcome) map[int]snapshot.Result {
	results := make(map[int]snapshot.Result, len(races))
	for _, race := range races {
		if _, ok := results[race]; ok {
			continue
		}
		result := e.source.Fetch(ctx, team, race)
		fetched.add(result)
		results[race] = result
	}
	return results
}

func failures(results map[int]snapshot.Result) int {
	n := 0
	for _, result := range results {
		if !result.Ok() {
			n++
		}
	}
	return n
}

// Races returns the race numbers 1 through n.
func Races(n int) []int {
	races := make([]int, 0, max(n, 0))
	for race := 1; race <= n; race++ {
		races = append(races, race)
	}
	return races
}

// Window selects which races of the season are displayed. First and Last
// take that many races from each end, both zero shows every race.
type Window struct {
	First int
	Last  int
}

// Apply slices races, the two ends never overlap so a race is shown at most
// once.
func (w Window) Apply(races []int) []int {
	first := min(max(w.First, 0), len(races))
	last := min(max(w.Last, 0), len(races))

	if (first == 0 && last == 0) || first+last >= len(races) {
		return append([]int(nil), races...)
	}

	out := make([]int, 0, first+last)
	out = append(out, races[:first]...)
	out = append(out, races[len(races)-last:]...)
	return out
}
