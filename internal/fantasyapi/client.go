// client.go contains the transport for the fantasy web service, every endpoint
// is decoded into the types in types.go here and nowhere else.

package fantasyapi

import (
	"context"
	"encoding/json"
	"errors"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/lib/htmlutil"
	"fmt"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_league_members = "client.league-members"
	report_client_opponent_team  = "client.opponent-team"
	report_client_feed           = "client.feed"
	report_client_credentials    = "client.credentials"
)

const DefaultBaseUrl = "https://fantasy.formula1.com"

var (
	// ErrAuthExpired means the upstream rejected the session cookies, they
	// must be refreshed before anything else is attempted.
	ErrAuthExpired = errors.New("fantasyapi: session expired")
	// ErrUpstreamUnavailable wraps every failure of the public feeds.
	ErrUpstreamUnavailable = errors.New("fantasyapi: upstream unavailable")
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Endpoint string
	Status   int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("fantasyapi: %s: unexpected status %d", e.Endpoint, e.Status)
}

// DecodeError is returned when a 200 response could not be decoded into
// its schema.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("fantasyapi: %s: decode: %s", e.Endpoint, e.Err)
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

// Credentials supplies the cookie header for authenticated endpoints.
type Credentials interface {
	Cookie(ctx context.Context) (string, error)
}

type Options struct {
	BaseUrl string
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	Retries           int
	RetryWait         time.Duration
	Timeout           time.Duration
	// CloudflareBypass wraps the transport to look like a browser to the
	// bot protection in front of the service.
	CloudflareBypass bool
}

type Client struct {
	http  *resty.Client
	creds Credentials
	tel   telemetry.API
}

func NewClient(opts Options, creds Credentials, tel telemetry.API) (*Client, error) {
	assert.NotNil(creds)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("fantasyapi", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.RetryWait == 0 {
		opts.RetryWait = time.Millisecond * 500
	}
	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeaders(map[string]string{
		"user-agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"accept":     "application/json",
		"referer":    opts.BaseUrl,
		"origin":     opts.BaseUrl,
	})
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	// transient failures only, everything else is a missing data point
	httpClient.SetRetryCount(opts.Retries)
	httpClient.SetRetryWaitTime(opts.RetryWait)
	httpClient.SetRetryMaxWaitTime(opts.RetryWait * 8)
	httpClient.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return res.StatusCode() == http.StatusTooManyRequests ||
			res.StatusCode() >= http.StatusInternalServerError
	})

	if opts.RequestsPerSecond > 0 {
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	return &Client{http: httpClient, creds: creds, tel: tel}, nil
}

func (c *Client) authedRequest(ctx context.Context) (*resty.Request, error) {
	cookie, err := c.creds.Cookie(ctx)
	if err != nil {
		c.tel.ReportBroken(report_client_credentials, err)
		return nil, fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}
	return c.http.R().
		SetContext(ctx).
		SetHeader("cookie", cookie), nil
}

func decode[T any](endpoint string, res *resty.Response) (T, error) {
	var parsed envelope[T]
	err := json.Unmarshal(res.Body(), &parsed)
	if err != nil {
		return parsed.Data.Value, DecodeError{Endpoint: endpoint, Err: err}
	}
	return parsed.Data.Value, nil
}

func LeagueMembersPath(playerUuid, leagueId string) string {
	return fmt.Sprintf(
		"/services/user/leaderboard/%s/pvtleagueuserrankget/1/%s/0/1/1/1000000/",
		url.PathEscape(playerUuid),
		url.PathEscape(leagueId),
	)
}

// LeagueMembers returns the ranked member list of a private league.
//
// The upstream answers an expired session with either 401/403 or an html
// login page, both come back as ErrAuthExpired.
func (c *Client) LeagueMembers(ctx context.Context, playerUuid, leagueId string) (LeagueMembers, error) {
	endpoint := LeagueMembersPath(playerUuid, leagueId)
	c.tel.ReportDebug(report_client_league_members, endpoint)

	req, err := c.authedRequest(ctx)
	if err != nil {
		return LeagueMembers{}, err
	}
	res, err := req.Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_league_members, fmt.Errorf("fetch: %w", err))
		return LeagueMembers{}, err
	}

	switch res.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return LeagueMembers{}, fmt.Errorf("%w: status %d", ErrAuthExpired, res.StatusCode())
	default:
		err := StatusError{Endpoint: endpoint, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_league_members, err)
		return LeagueMembers{}, err
	}

	members, err := decode[LeagueMembers](endpoint, res)
	if err != nil {
		title, isHtml := htmlutil.PageTitle(res.Body())
		if isHtml {
			err = fmt.Errorf("got html page %q instead of json", title)
		}
		c.tel.ReportWarning(report_client_league_members, err)
		return LeagueMembers{}, fmt.Errorf("%w: %w", ErrAuthExpired, err)
	}
	return members, nil
}

func OpponentTeamPath(guid string, teamNo, race int) string {
	return fmt.Sprintf(
		"/services/user/opponentteam/opponentgamedayplayerteamget/1/%s/%d/%d/1",
		url.PathEscape(guid),
		teamNo,
		race,
	)
}

// OpponentTeam returns a single team's snapshot for a race. The error wraps
// ErrAuthExpired when the session was rejected, otherwise it is a StatusError
// for non-200 responses, a DecodeError when the payload does not have a team
// in it, or a transport error.
func (c *Client) OpponentTeam(ctx context.Context, guid string, teamNo, race int) (UserTeam, error) {
	endpoint := OpponentTeamPath(guid, teamNo, race)
	c.tel.ReportDebug(report_client_opponent_team, endpoint)

	req, err := c.authedRequest(ctx)
	if err != nil {
		return UserTeam{}, err
	}
	res, err := req.Get(endpoint)
	if err != nil {
		return UserTeam{}, fmt.Errorf("fetch: %w", err)
	}
	switch res.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return UserTeam{}, fmt.Errorf("%w: status %d", ErrAuthExpired, res.StatusCode())
	default:
		return UserTeam{}, StatusError{Endpoint: endpoint, Status: res.StatusCode()}
	}

	team, err := decode[OpponentTeam](endpoint, res)
	if err != nil {
		title, isHtml := htmlutil.PageTitle(res.Body())
		if isHtml {
			return UserTeam{}, fmt.Errorf("%w: got html page %q instead of json", ErrAuthExpired, title)
		}
		return UserTeam{}, err
	}
	if len(team.UserTeam) == 0 {
		return UserTeam{}, DecodeError{Endpoint: endpoint, Err: errors.New("empty userTeam")}
	}
	return team.UserTeam[0], nil
}

func feed[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	c.tel.ReportDebug(report_client_feed, endpoint)

	var empty T
	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_feed, fmt.Errorf("fetch: %w", err), endpoint)
		return empty, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if res.StatusCode() != http.StatusOK {
		err := StatusError{Endpoint: endpoint, Status: res.StatusCode()}
		c.tel.ReportWarning(report_client_feed, err)
		return empty, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	value, err := decode[T](endpoint, res)
	if err != nil {
		c.tel.ReportBroken(report_client_feed, err)
		return empty, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	return value, nil
}

func AssetsPath(race int) string {
	return fmt.Sprintf("/feeds/drivers/%d_en.json", race)
}

const (
	SchedulePath    = "/feeds/schedule/raceday_en.json"
	ConstraintsPath = "/feeds/limits/constraints.json"
)

// Assets returns the driver and constructor reference feed as of a race.
func (c *Client) Assets(ctx context.Context, race int) ([]Asset, error) {
	return feed[[]Asset](ctx, c, AssetsPath(race))
}

// Schedule returns the season's race days.
func (c *Client) Schedule(ctx context.Context) ([]RaceDay, error) {
	return feed[[]RaceDay](ctx, c, SchedulePath)
}

// Constraints returns the game constraints, which carry the current gameday.
func (c *Client) Constraints(ctx context.Context) (Constraints, error) {
	return feed[Constraints](ctx, c, ConstraintsPath)
}
