package globals

import (
	"context"
	"f1league/internal/aggregate"
	"f1league/internal/assets"
	"f1league/internal/calendar"
	"f1league/internal/components/telemetry"
	"f1league/internal/config"
	"f1league/internal/roster"
)

type key struct{}

type Value struct {
	Config    config.Config
	Telemetry telemetry.API
	Roster    roster.Loader
	Calendar  *calendar.Resolver
	Assets    assets.Client
	Engine    aggregate.Engine
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
