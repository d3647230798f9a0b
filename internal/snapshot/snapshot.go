// Package snapshot fetches a single team's state for a single race.
package snapshot

import (
	"context"
	"errors"
	"f1league/internal/chips"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"f1league/internal/roster"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	report_fetcher_fetch    = "fetcher.fetch"
	report_fetcher_failures = "fetcher.failures"
	report_fetcher_refresh  = "fetcher.refresh"
)

// ErrAuthExpired is wrapped by failures where the upstream rejected the
// session.
var ErrAuthExpired = fantasyapi.ErrAuthExpired

// Optional is a value that may be missing upstream, a missing value is
// distinct from zero.
type Optional struct {
	Value   decimal.Decimal
	Present bool
}

func Some(value decimal.Decimal) Optional {
	return Optional{Value: value, Present: true}
}

func fromNumber(n fantasyapi.Number) Optional {
	value, ok := n.Decimal()
	if !ok {
		return Optional{}
	}
	return Some(value)
}

type RosterPosition struct {
	AssetId     int
	Position    int
	Captain     bool
	MegaCaptain bool
}

type RaceSnapshot struct {
	Slot   int
	Race   int
	Points Optional
	Budget Optional
	Chips  chips.Usage
	Roster []RosterPosition
}

type Reason string

const (
	HttpError  Reason = "http_error"
	ParseError Reason = "parse_error"
)

// FetchFailure means the data for a race is missing, it is never fatal.
type FetchFailure struct {
	Race   int
	Reason Reason
	Err    error
}

func (f FetchFailure) Error() string {
	return fmt.Sprintf("race %d: %s: %s", f.Race, f.Reason, f.Err)
}

func (f FetchFailure) Unwrap() error {
	return f.Err
}

// Result holds either a snapshot or the reason it is missing.
type Result struct {
	Snapshot RaceSnapshot
	Failure  *FetchFailure
}

func (r Result) Ok() bool {
	return r.Failure == nil
}

// AuthExpired reports whether the snapshot is missing because the session
// was rejected.
func (r Result) AuthExpired() bool {
	return r.Failure != nil && errors.Is(r.Failure.Err, ErrAuthExpired)
}

type TeamClient interface {
	OpponentTeam(ctx context.Context, guid string, teamNo, race int) (fantasyapi.UserTeam, error)
}

// Refresher reloads the session after the upstream rejected it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Fetcher struct {
	client  TeamClient
	session Refresher
	tel     telemetry.API

	failures int64
	// expired is set once a refreshed session was rejected too, later
	// fetches fail without refreshing again.
	expired bool
}

func NewFetcher(client TeamClient, session Refresher, tel telemetry.API) *Fetcher {
	assert.NotNil(client)
	assert.NotNil(session)
	assert.NotNil(tel)
	return &Fetcher{
		client:  client,
		session: session,
		tel:     telemetry.NewScopedAPI("snapshot", tel),
	}
}

// Fetch retrieves a team's snapshot for a race. It never returns an error,
// failures are carried in the Result.
//
// A rejected session is refreshed and the fetch retried once.
func (f *Fetcher) Fetch(ctx context.Context, team roster.Team, race int) Result {
	userTeam, err := f.fetch(ctx, team, race)
	if err != nil {
		failure := &FetchFailure{Race: race, Reason: classify(err), Err: err}
		f.failures++
		f.tel.ReportWarning(report_fetcher_fetch, team.Entry.Name, failure)
		f.tel.ReportCount(report_fetcher_failures, f.failures)
		return Result{Failure: failure}
	}
	return Result{Snapshot: FromUserTeam(userTeam, team.Entry.Slot, race)}
}

func (f *Fetcher) fetch(ctx context.Context, team roster.Team, race int) (fantasyapi.UserTeam, error) {
	guid := team.Participant.Guid()
	userTeam, err := f.client.OpponentTeam(ctx, guid, team.Entry.Slot, race)
	if !errors.Is(err, ErrAuthExpired) || f.expired {
		return userTeam, err
	}

	refreshErr := f.session.Refresh(ctx)
	if refreshErr != nil {
		f.expired = true
		f.tel.ReportWarning(report_fetcher_refresh, refreshErr)
		return userTeam, err
	}
	userTeam, err = f.client.OpponentTeam(ctx, guid, team.Entry.Slot, race)
	if errors.Is(err, ErrAuthExpired) {
		f.expired = true
	}
	return userTeam, err
}

func classify(err error) Reason {
	var decodeErr fantasyapi.DecodeError
	if errors.As(err, &decodeErr) {
		return ParseError
	}
	return HttpError
}

// FromUserTeam converts the decoded upstream team.
func FromUserTeam(team fantasyapi.UserTeam, slot, race int) RaceSnapshot {
	snapshot := RaceSnapshot{
		Slot:   slot,
		Race:   race,
		Points: fromNumber(team.GdPoints),
		Budget: fromNumber(team.Budget()),
		Chips:  chips.FromFields(team.Chips),
	}
	for _, player := range team.Players {
		id, ok := player.Id.Int()
		if !ok {
			continue
		}
		position, _ := player.Position.Int()
		snapshot.Roster = append(snapshot.Roster, RosterPosition{
			AssetId:     id,
			Position:    position,
			Captain:     player.IsCaptain.Truthy(),
			MegaCaptain: player.IsMgCaptain.Truthy(),
		})
	}
	return snapshot
}
