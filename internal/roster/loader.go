package roster

import (
	"context"
	"encoding/json"
	"errors"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

const (
	report_loader_load   = "loader.load"
	report_loader_cache  = "loader.cache"
	report_loader_decode = "loader.decode"
	report_loader_count  = "loader.participants"
)

var (
	ErrAuthExpired   = fantasyapi.ErrAuthExpired
	ErrInvalidConfig = errors.New("roster: player uuid and league id are required")
)

type MembersClient interface {
	LeagueMembers(ctx context.Context, playerUuid, leagueId string) (fantasyapi.LeagueMembers, error)
}

// Refresher reloads the session after the upstream rejected it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Options struct {
	PlayerUuid string
	LeagueId   string
	CachePath  string
}

type Loader struct {
	opts    Options
	client  MembersClient
	session Refresher
	tel     telemetry.API
}

func NewLoader(opts Options, client MembersClient, session Refresher, tel telemetry.API) Loader {
	assert.NotEmptyStr(opts.CachePath)
	assert.NotNil(client)
	assert.NotNil(session)
	assert.NotNil(tel)
	return Loader{
		opts:    opts,
		client:  client,
		session: session,
		tel:     telemetry.NewScopedAPI("roster", tel),
	}
}

// Load returns the cached roster verbatim when the cache file is non-empty,
// otherwise it fetches the league members and writes the cache.
func (l Loader) Load(ctx context.Context) ([]Participant, error) {
	cached, err := l.readCache()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if l.opts.PlayerUuid == "" || l.opts.LeagueId == "" {
		return nil, ErrInvalidConfig
	}

	members, err := l.client.LeagueMembers(ctx, l.opts.PlayerUuid, l.opts.LeagueId)
	if errors.Is(err, ErrAuthExpired) {
		l.tel.ReportWarning(report_loader_load, "session rejected, refreshing", err)
		refreshErr := l.session.Refresh(ctx)
		if refreshErr != nil {
			return nil, fmt.Errorf("%w: refresh: %w", ErrAuthExpired, refreshErr)
		}
		members, err = l.client.LeagueMembers(ctx, l.opts.PlayerUuid, l.opts.LeagueId)
	}
	if err != nil {
		l.tel.ReportBroken(report_loader_load, err)
		return nil, err
	}

	participants := l.group(members.MemRank)
	l.tel.ReportDebug(
		"fetched league members",
		"league", unescape(members.LeagueInfo.LeagueName),
		"participants", len(participants),
	)
	l.tel.ReportCount(report_loader_count, int64(len(participants)))

	err = l.writeCache(participants)
	if err != nil {
		l.tel.ReportBroken(report_loader_cache, err)
		return nil, err
	}
	return participants, nil
}

// group collects member ranks into participants in first-encounter order.
func (l Loader) group(ranks []fantasyapi.MemberRank) []Participant {
	participants := []Participant{}
	index := map[string]int{}
	for _, rank := range ranks {
		uuid, userId, ok := ParseGuid(rank.Guid)
		if !ok {
			l.tel.ReportWarning(report_loader_decode, "malformed guid", rank.Guid)
			continue
		}
		slot, ok := rank.TeamNo.Int()
		if !ok {
			l.tel.ReportWarning(report_loader_decode, "malformed team number", rank.Guid, rank.TeamNo.Raw())
			continue
		}

		i, ok := index[uuid]
		if !ok {
			i = len(participants)
			index[uuid] = i
			participants = append(participants, Participant{UUID: uuid, UserID: userId})
		}
		participants[i].Teams = append(participants[i].Teams, TeamEntry{
			Name: unescape(rank.TeamName),
			Slot: slot,
		})
	}
	return participants
}

func unescape(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}

// readCache returns os.ErrNotExist for a missing or empty cache file.
func (l Loader) readCache() ([]Participant, error) {
	content, err := os.ReadFile(l.opts.CachePath)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, os.ErrNotExist
	}
	var participants []Participant
	err = json.Unmarshal(content, &participants)
	if err != nil {
		err = fmt.Errorf("decode roster cache %s: %w", l.opts.CachePath, err)
		l.tel.ReportBroken(report_loader_cache, err)
		return nil, err
	}
	return participants, nil
}

func (l Loader) writeCache(participants []Participant) error {
	content, err := json.MarshalIndent(participants, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(l.opts.CachePath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(l.opts.CachePath, content, 0644)
}
