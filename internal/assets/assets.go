// Package assets wraps the driver and constructor reference feed.
package assets

import (
	"cmp"
	"context"
	"f1league/internal/components/assert"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"f1league/lib/textutil"
	"slices"

	"github.com/antzucaro/matchr"
	"github.com/shopspring/decimal"
)

const (
	report_client_fetch = "client.fetch"
	report_client_skip  = "client.skip"
)

type Kind int

const (
	Driver Kind = iota
	Constructor
)

func (k Kind) String() string {
	if k == Constructor {
		return "constructor"
	}
	return "driver"
}

type Stats struct {
	PositionPoints   int
	DnfDqPoints      int
	OvertakingPoints int
	FastestLapPoints int
	DotdPoints       int
	ValueForMoney    decimal.Decimal
}

type Asset struct {
	Id   int
	Kind Kind
	Name string
	Team string
	// Value is the price in millions.
	Value  decimal.Decimal
	Points int
	Stats  Stats
}

type Feed interface {
	Assets(ctx context.Context, race int) ([]fantasyapi.Asset, error)
}

type Client struct {
	feed Feed
	tel  telemetry.API
}

func NewClient(feed Feed, tel telemetry.API) Client {
	assert.NotNil(feed)
	assert.NotNil(tel)
	return Client{
		feed: feed,
		tel:  telemetry.NewScopedAPI("assets", tel),
	}
}

// Fetch returns the active drivers and constructors as of a race.
func (c Client) Fetch(ctx context.Context, race int) ([]Asset, error) {
	raw, err := c.feed.Assets(ctx, race)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch, err, race)
		return nil, err
	}

	var out []Asset
	for _, item := range raw {
		if item.IsActive.Raw() != "1" {
			continue
		}
		asset, ok := convert(item)
		if !ok {
			c.tel.ReportWarning(report_client_skip, "unexpected asset", item.PlayerId.Raw(), item.PositionName)
			continue
		}
		out = append(out, asset)
	}
	c.tel.ReportDebug("fetched assets", "race", race, "count", len(out))
	return out, nil
}

func intOrZero(n fantasyapi.Number) int {
	i, _ := n.Int()
	return i
}

func decimalOrZero(n fantasyapi.Number) decimal.Decimal {
	d, _ := n.Decimal()
	return d
}

func convert(item fantasyapi.Asset) (Asset, bool) {
	var kind Kind
	switch item.PositionName {
	case "DRIVER":
		kind = Driver
	case "CONSTRUCTOR":
		kind = Constructor
	default:
		return Asset{}, false
	}
	id, ok := item.PlayerId.Int()
	if !ok {
		return Asset{}, false
	}

	asset := Asset{
		Id:     id,
		Kind:   kind,
		Name:   item.FullName,
		Team:   item.TeamName,
		Value:  decimalOrZero(item.Value),
		Points: intOrZero(item.OverallPoints),
	}
	if item.AdditionalStats != nil {
		stats := item.AdditionalStats
		asset.Stats = Stats{
			PositionPoints:   intOrZero(stats.TotalPositionPts),
			DnfDqPoints:      intOrZero(stats.TotalDnfDqPts),
			OvertakingPoints: intOrZero(stats.OvertakingPts),
			FastestLapPoints: intOrZero(stats.FastestLapPts),
			DotdPoints:       intOrZero(stats.DotdPts),
			ValueForMoney:    decimalOrZero(stats.ValueForMoney),
		}
	}
	return asset, true
}

// NameMap resolves asset ids to display names.
func NameMap(list []Asset) map[int]string {
	names := make(map[int]string, len(list))
	for _, asset := range list {
		names[asset.Id] = asset.Name
	}
	return names
}

func byValue(list []Asset, kind Kind) []Asset {
	var out []Asset
	for _, asset := range list {
		if asset.Kind == kind {
			out = append(out, asset)
		}
	}
	slices.SortStableFunc(out, func(a, b Asset) int {
		return b.Value.Cmp(a.Value)
	})
	return out
}

// Drivers returns the drivers in list, most expensive first.
func Drivers(list []Asset) []Asset {
	return byValue(list, Driver)
}

// Constructors returns the constructors in list, most expensive first.
func Constructors(list []Asset) []Asset {
	return byValue(list, Constructor)
}

type Match struct {
	Asset      Asset
	Similarity float64
}

// Find ranks assets by how closely their name matches query. Names that
// contain the query outright rank above every fuzzy match.
func Find(list []Asset, query string, limit int) []Match {
	query = textutil.NormalizeName(query)
	if query == "" {
		return nil
	}

	matches := make([]Match, 0, len(list))
	for _, asset := range list {
		similarity := matchr.JaroWinkler(query, textutil.NormalizeName(asset.Name), false)
		if textutil.MatchName(asset.Name, []string{query}) {
			similarity += 1
		}
		if similarity <= 0 {
			continue
		}
		matches = append(matches, Match{Asset: asset, Similarity: similarity})
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
