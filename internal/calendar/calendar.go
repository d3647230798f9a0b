// Package calendar resolves race numbers to display labels and the current
// race of the season.
package calendar

import (
	"context"
	"errors"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"fmt"
	"sync"
)

const (
	report_resolver_resolve      = "resolver.resolve"
	report_resolver_current_race = "resolver.current-race"
)

var (
	// ErrNoCurrentRace means no race was requested and the current race
	// could not be resolved.
	ErrNoCurrentRace = errors.New("calendar: current race unavailable")
	// ErrFutureRace means the requested race has not been reached yet.
	ErrFutureRace = errors.New("calendar: race is past the current race")
)

type Feeds interface {
	Schedule(ctx context.Context) ([]fantasyapi.RaceDay, error)
	Constraints(ctx context.Context) (fantasyapi.Constraints, error)
}

// Locations maps a race number to its circuit location.
type Locations map[int]string

// Label returns the location of race n, or fallback when it is not known.
func (l Locations) Label(n int, fallback string) string {
	location, ok := l[n]
	if !ok {
		return fallback
	}
	return location
}

// RaceLabel is the column header used for race n, ex. "Melbourne" or "R3".
func (l Locations) RaceLabel(n int) string {
	return l.Label(n, fmt.Sprintf("R%d", n))
}

type Resolver struct {
	feeds Feeds
	tel   telemetry.API

	once      sync.Once
	locations Locations
}

func NewResolver(feeds Feeds, tel telemetry.API) *Resolver {
	assert.NotNil(feeds)
	assert.NotNil(tel)
	return &Resolver{
		feeds: feeds,
		tel:   telemetry.NewScopedAPI("calendar", tel),
	}
}

// Resolve fetches the schedule once per Resolver. It never fails, an
// unavailable schedule results in an empty mapping.
func (r *Resolver) Resolve(ctx context.Context) Locations {
	r.once.Do(func() {
		r.locations = r.fetch(ctx)
	})
	return r.locations
}

func (r *Resolver) fetch(ctx context.Context) Locations {
	locations := Locations{}
	days, err := r.feeds.Schedule(ctx)
	if err != nil {
		r.tel.ReportWarning(report_resolver_resolve, err)
		return locations
	}
	for _, day := range days {
		race, ok := day.MeetingNumber.Int()
		if !ok || race == 0 || day.CircuitLocation == "" {
			continue
		}
		locations[race] = day.CircuitLocation
	}
	r.tel.ReportDebug("resolved race locations", "races", len(locations))
	return locations
}

// CurrentRace returns the season's active race number, false means no
// default is available and the caller must pick a race explicitly.
func (r *Resolver) CurrentRace(ctx context.Context) (int, bool) {
	constraints, err := r.feeds.Constraints(ctx)
	if err != nil {
		r.tel.ReportWarning(report_resolver_current_race, err)
		return 0, false
	}
	race, ok := constraints.GamedayId.Int()
	if !ok || race < 1 {
		r.tel.ReportWarning(report_resolver_current_race, "unexpected gameday id", constraints.GamedayId.Raw())
		return 0, false
	}
	return race, true
}

// Race checks a requested race number against the current race, 0 picks the
// current race. An explicit race is accepted as-is when the current race is
// unavailable.
func (r *Resolver) Race(ctx context.Context, requested int) (int, error) {
	if requested < 0 {
		return 0, fmt.Errorf("calendar: invalid race %d", requested)
	}
	current, ok := r.CurrentRace(ctx)
	if requested == 0 {
		if !ok {
			return 0, ErrNoCurrentRace
		}
		return current, nil
	}
	if ok && requested > current {
		return 0, fmt.Errorf("%w: race %d, current race %d", ErrFutureRace, requested, current)
	}
	return requested, nil
}
