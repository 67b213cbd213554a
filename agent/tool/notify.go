package tool

import (
	"context"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
)

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, contractx.UIEvent) {}

// LogNotifier writes progress events to the logger carried by ctx, falling
// back to the global logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, ev contractx.UIEvent) {
	zerolog.Ctx(ctx).Info().
		Str("event", string(ev.Type)).
		Str("query", ev.Query).
		Msg("ui event")
}
