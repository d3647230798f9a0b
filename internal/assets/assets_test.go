package assets

import (
	"context"
	"f1league/internal/components/telemetry"
	"f1league/internal/fantasyapi"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	assets []fantasyapi.Asset
	err    error
}

func (f fakeFeed) Assets(ctx context.Context, race int) ([]fantasyapi.Asset, error) {
	return f.assets, f.err
}

func rawAsset(id, position, name, value string) fantasyapi.Asset {
	return fantasyapi.Asset{
		PlayerId:      fantasyapi.NewNumber(id),
		PositionName:  position,
		IsActive:      fantasyapi.NewNumber("1"),
		FullName:      name,
		Value:         fantasyapi.NewNumber(value),
		OverallPoints: fantasyapi.NewNumber("10.0"),
	}
}

func testAssets() []Asset {
	return []Asset{
		{Id: 1, Kind: Driver, Name: "Lando Norris", Value: decimal.RequireFromString("29.1")},
		{Id: 2, Kind: Driver, Name: "Max Verstappen", Value: decimal.RequireFromString("30.5")},
		{Id: 3, Kind: Constructor, Name: "McLaren", Value: decimal.RequireFromString("31")},
		{Id: 4, Kind: Driver, Name: "Oscar Piastri", Value: decimal.RequireFromString("29.1")},
		{Id: 5, Kind: Constructor, Name: "Ferrari", Value: decimal.RequireFromString("27.4")},
	}
}

func TestFetch(t *testing.T) {
	inactive := rawAsset("9", "DRIVER", "Reserve", "5")
	inactive.IsActive = fantasyapi.NewNumber("0")
	withStats := rawAsset("14", "DRIVER", "Fernando Alonso", "8.5")
	withStats.AdditionalStats = &fantasyapi.AdditionalStats{
		TotalPositionPts: fantasyapi.NewNumber("12.0"),
		OvertakingPts:    fantasyapi.NewNumber("3"),
		ValueForMoney:    fantasyapi.NewNumber("1.25"),
	}

	rec := telemetry.NewRecorder()
	client := NewClient(fakeFeed{assets: []fantasyapi.Asset{
		withStats,
		inactive,
		rawAsset("3", "CONSTRUCTOR", "McLaren", "31"),
		rawAsset("x", "DRIVER", "Broken", "1"),
		rawAsset("4", "GOALKEEPER", "Wrong Sport", "1"),
	}}, rec)

	list, err := client.Fetch(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, rec.Warnings, 2)

	alonso := list[0]
	require.Equal(t, 14, alonso.Id)
	require.Equal(t, Driver, alonso.Kind)
	require.Equal(t, 10, alonso.Points)
	require.True(t, decimal.RequireFromString("8.5").Equal(alonso.Value))
	require.Equal(t, 12, alonso.Stats.PositionPoints)
	require.Equal(t, 3, alonso.Stats.OvertakingPoints)
	require.Equal(t, "1.25", alonso.Stats.ValueForMoney.String())

	require.Equal(t, Constructor, list[1].Kind)
}

func TestFetchUnavailable(t *testing.T) {
	rec := telemetry.NewRecorder()
	_, err := NewClient(fakeFeed{err: fantasyapi.ErrUpstreamUnavailable}, rec).Fetch(context.Background(), 1)
	require.ErrorIs(t, err, fantasyapi.ErrUpstreamUnavailable)
	require.Equal(t, []string{"assets: client.fetch"}, rec.BrokenIds())
}

func TestNameMap(t *testing.T) {
	names := NameMap(testAssets())
	require.Equal(t, "McLaren", names[3])
	require.Len(t, names, 5)
}

func names(list []Asset) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Name
	}
	return out
}

func TestDriversAndConstructors(t *testing.T) {
	list := testAssets()

	// equal values keep feed order
	expected := []string{"Max Verstappen", "Lando Norris", "Oscar Piastri"}
	if diff := cmp.Diff(expected, names(Drivers(list))); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []string{"McLaren", "Ferrari"}, names(Constructors(list)))
}

func TestFind(t *testing.T) {
	list := testAssets()

	matches := Find(list, "verstapen", 2)
	require.Len(t, matches, 2)
	require.Equal(t, "Max Verstappen", matches[0].Asset.Name)

	matches = Find(list, "  mc laren ", 1)
	require.Len(t, matches, 1)
	require.Equal(t, "McLaren", matches[0].Asset.Name)
	require.Greater(t, matches[0].Similarity, 1.0)

	require.Empty(t, Find(list, "   ", 3))
}
