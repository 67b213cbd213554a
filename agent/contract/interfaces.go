package contract

import (
	"context"

	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

// GiftSearcher is the search engine as seen by the search_gifts tool.
type GiftSearcher interface {
	Search(ctx context.Context, query string, priceMin, priceMax float64) []statex.GiftItem
	Bounds() (float64, float64)
}

// Notifier receives progress events that are not part of a tool reply.
type Notifier interface {
	Notify(ctx context.Context, ev UIEvent)
}

// ToolExecutor runs one validated tool call against the loaded gift state.
type ToolExecutor interface {
	Execute(ctx context.Context, tool string, args map[string]any, st *statex.GiftState) (ToolResult, error)
}

// ToolRouter handles one tool call end to end.
type ToolRouter interface {
	Handle(ctx context.Context, call ToolCall) (ToolReply, error)
}
