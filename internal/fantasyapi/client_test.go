package fantasyapi

import (
	"context"
	"encoding/json"
	"errors"
	"f1league/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		BaseUrl:   server.URL,
		Retries:   2,
		RetryWait: time.Millisecond,
	}, StaticCredentials("login-session=abc"), telemetry.NewRecorder())
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestNumber(t *testing.T) {
	testCases := []struct {
		json    string
		present bool
		digits  bool
		asInt   int
		intOk   bool
	}{
		{json: `3`, present: true, digits: true, asInt: 3, intOk: true},
		{json: `"12"`, present: true, digits: true, asInt: 12, intOk: true},
		{json: `3.0`, present: true, digits: false, asInt: 3, intOk: true},
		{json: `-1`, present: true, digits: false, asInt: -1, intOk: true},
		{json: `null`},
		{json: `""`},
		{json: `"abc"`, present: true},
		{json: `false`},
	}

	for _, test := range testCases {
		var n Number
		err := json.Unmarshal([]byte(test.json), &n)
		require.NoError(t, err, test.json)
		require.Equal(t, test.present, n.Present(), test.json)
		require.Equal(t, test.digits, n.IsDigits(), test.json)
		i, ok := n.Int()
		require.Equal(t, test.intOk, ok, test.json)
		require.Equal(t, test.asInt, i, test.json)
	}

	var n Number
	require.Error(t, json.Unmarshal([]byte(`{}`), &n))
}

func TestUserTeamDecode(t *testing.T) {
	payload := `{
		"gdpoints": 120,
		"team_info": {"maxTeambal": "104.3"},
		"limitlesstakengd": 3,
		"is_wildcard_taken_gd_id": "1",
		"finalfixtakengd": null,
		"extradrstakengd": {"weird": true},
		"playerid": [{"id": "14", "playerpostion": 1, "iscaptain": 1, "ismgcaptain": 0}]
	}`

	var team UserTeam
	require.NoError(t, json.Unmarshal([]byte(payload), &team))

	points, ok := team.GdPoints.Int()
	require.True(t, ok)
	require.Equal(t, 120, points)

	budget, ok := team.Budget().Decimal()
	require.True(t, ok)
	require.Equal(t, "104.3", budget.String())

	require.Len(t, team.Chips, 3)
	require.Equal(t, "3", team.Chips["limitlesstakengd"].Raw())
	require.Equal(t, "1", team.Chips["is_wildcard_taken_gd_id"].Raw())
	require.False(t, team.Chips["finalfixtakengd"].Present())

	require.Len(t, team.Players, 1)
	require.True(t, team.Players[0].IsCaptain.Truthy())
	require.False(t, team.Players[0].IsMgCaptain.Truthy())
}

func TestBudgetFallback(t *testing.T) {
	var team UserTeam
	require.NoError(t, json.Unmarshal([]byte(`{"maxteambal": 101.5, "maxTeambal": 99}`), &team))
	require.Equal(t, "101.5", team.Budget().Raw())

	require.NoError(t, json.Unmarshal([]byte(`{"maxTeambal": 99}`), &team))
	require.Equal(t, "99", team.Budget().Raw())

	require.NoError(t, json.Unmarshal([]byte(`{}`), &team))
	require.False(t, team.Budget().Present())
}

func TestLeagueMembers(t *testing.T) {
	var cookie, path string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("cookie")
		path = r.URL.Path
		w.Write([]byte(`{"Data": {"Value": {
			"leagueInfo": {"leagueName": "The%20Paddock"},
			"memRank": [{"guid": "uu-id-0-7", "teamName": "Team%20A", "teamNo": 1}]
		}}}`))
	}))

	members, err := client.LeagueMembers(context.Background(), "uu-id", "42")
	require.NoError(t, err)
	require.Equal(t, "login-session=abc", cookie)
	require.Equal(t, LeagueMembersPath("uu-id", "42"), path)
	require.Equal(t, "The%20Paddock", members.LeagueInfo.LeagueName)
	require.Len(t, members.MemRank, 1)
	require.Equal(t, "uu-id-0-7", members.MemRank[0].Guid)
}

func TestLeagueMembersAuthExpired(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "login page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><body>please log in</body></html>`))
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, test.handler)
			_, err := client.LeagueMembers(context.Background(), "a", "b")
			require.ErrorIs(t, err, ErrAuthExpired)
		})
	}
}

func TestOpponentTeamAuthExpired(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "forbidden",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "login page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><head><title>Sign in</title></head></html>`))
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, test.handler)
			_, err := client.OpponentTeam(context.Background(), "u-0-1", 1, 3)
			require.ErrorIs(t, err, ErrAuthExpired)

			var statusErr StatusError
			require.False(t, errors.As(err, &statusErr))
		})
	}
}

func TestOpponentTeamRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"Data": {"Value": {"userTeam": [{"gdpoints": 10}]}}}`))
	}))

	team, err := client.OpponentTeam(context.Background(), "u-0-1", 1, 3)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, "10", team.GdPoints.Raw())
}

func TestOpponentTeamFailures(t *testing.T) {
	var calls atomic.Int32
	notFound := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	_, err := notFound.OpponentTeam(context.Background(), "u-0-1", 1, 3)
	var statusErr StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotFound, statusErr.Status)
	// 4xx is not transient
	require.Equal(t, int32(1), calls.Load())

	empty := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Data": {"Value": {"userTeam": []}}}`))
	}))
	_, err = empty.OpponentTeam(context.Background(), "u-0-1", 1, 3)
	var decodeErr DecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestFeeds(t *testing.T) {
	var scheduleCookie string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SchedulePath:
			scheduleCookie = r.Header.Get("cookie")
			w.Write([]byte(`{"Data": {"Value": [{"MeetingNumber": 1, "CircuitLocation": "Melbourne"}]}}`))
		case ConstraintsPath:
			w.Write([]byte(`{"Data": {"Value": {"GamedayId": 7}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	days, err := client.Schedule(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, "Melbourne", days[0].CircuitLocation)
	require.Empty(t, scheduleCookie)

	constraints, err := client.Constraints(context.Background())
	require.NoError(t, err)
	require.Equal(t, "7", constraints.GamedayId.Raw())

	_, err = client.Assets(context.Background(), 3)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}
