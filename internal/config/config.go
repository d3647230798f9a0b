// Package config loads the league configuration, `league.json5` merged with
// `league.local.json5` and then environment overrides.
package config

import (
	"errors"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"f1league/lib/configutil"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultName = "league.json5"

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Upstream struct {
	BaseUrl           string  `json:"base_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Retries           int     `json:"retries"`
	RetryWaitMs       int     `json:"retry_wait_ms"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	// the bot protection in front of the fantasy service is bypassed unless
	// this is set
	DisableCloudflareBypass bool `json:"disable_cloudflare_bypass"`
}

func (u Upstream) Options() fantasyapi.Options {
	return fantasyapi.Options{
		BaseUrl:           u.BaseUrl,
		RequestsPerSecond: u.RequestsPerSecond,
		Retries:           u.Retries,
		RetryWait:         time.Duration(u.RetryWaitMs) * time.Millisecond,
		Timeout:           time.Duration(u.TimeoutSeconds) * time.Second,
		CloudflareBypass:  !u.DisableCloudflareBypass,
	}
}

type Config struct {
	PlayerUuid  string `json:"player_uuid"`
	LeagueId    string `json:"league_id"`
	CookieFile  string `json:"cookie_file"`
	RosterCache string `json:"roster_cache"`
	// LimitlessDelta is the points adjustment used by `--ll-adjust` unless
	// `--ll-delta` is set.
	LimitlessDelta int              `json:"limitless_delta"`
	Upstream       Upstream         `json:"upstream"`
	Telemetry      telemetry.Config `json:"telemetry"`
}

const (
	EnvPlayerUuid = "PLAYER_UUID"
	EnvLeagueId   = "PLAYER_LEAGUE"
	EnvCookieFile = "LEAGUE_COOKIE_FILE"
)

type envOverrides struct {
	PlayerUuid string `env:"PLAYER_UUID"`
	LeagueId   string `env:"PLAYER_LEAGUE"`
	CookieFile string `env:"LEAGUE_COOKIE_FILE"`
}

// ApplyEnv overrides the identity and credential settings with the
// environment, a nil environment reads the process environment.
func (c *Config) ApplyEnv(environment map[string]string) error {
	var overrides envOverrides
	err := env.ParseWithOptions(&overrides, env.Options{Environment: environment})
	if err != nil {
		return err
	}
	if overrides.PlayerUuid != "" {
		c.PlayerUuid = overrides.PlayerUuid
	}
	if overrides.LeagueId != "" {
		c.LeagueId = overrides.LeagueId
	}
	if overrides.CookieFile != "" {
		c.CookieFile = overrides.CookieFile
	}
	return nil
}

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.CookieFile == "" {
		c.CookieFile = "cookies.json"
	}
	if c.RosterCache == "" {
		c.RosterCache = "players.json"
	}
	if c.LimitlessDelta == 0 {
		c.LimitlessDelta = 128
	}
	if c.Upstream.BaseUrl == "" {
		c.Upstream.BaseUrl = fantasyapi.DefaultBaseUrl
	}
	if c.Upstream.RequestsPerSecond == 0 {
		c.Upstream.RequestsPerSecond = 4
	}
	if c.Upstream.Retries == 0 {
		c.Upstream.Retries = 3
	}
	if c.Upstream.RetryWaitMs == 0 {
		c.Upstream.RetryWaitMs = 500
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 30
	}
}

// Validate checks the fields every command needs, the league identity itself
// is only required once the roster cache has to be fetched.
func (c Config) Validate() error {
	if c.CookieFile == "" {
		return fmt.Errorf("%w: cookie_file is empty", ErrInvalidConfig)
	}
	if c.RosterCache == "" {
		return fmt.Errorf("%w: roster_cache is empty", ErrInvalidConfig)
	}
	if c.Upstream.Retries < 0 {
		return fmt.Errorf("%w: upstream.retries must not be negative", ErrInvalidConfig)
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: upstream.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ValidateIdentity checks the fields needed to query the league members.
func (c Config) ValidateIdentity() error {
	if c.PlayerUuid == "" {
		return fmt.Errorf("%w: player_uuid (or %s) is required", ErrInvalidConfig, EnvPlayerUuid)
	}
	if c.LeagueId == "" {
		return fmt.Errorf("%w: league_id (or %s) is required", ErrInvalidConfig, EnvLeagueId)
	}
	return nil
}

// Load reads path, or searches for `league.json5` up from the working
// directory when path is empty. Not finding a config by searching is not an
// error, the environment may supply everything.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path != "" {
		cfg, err = configutil.ReadConfig[Config](path)
	} else {
		cfg, err = configutil.ReadRecursively[Config](DefaultName)
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	err = cfg.ApplyEnv(nil)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}
