package contract

import (
	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

type EventType string

const (
	EventSearching       EventType = "searching"
	EventGiftsFound      EventType = "gifts_found"
	EventSearchFailed    EventType = "search_failed"
	EventGiftSelected    EventType = "gift_selected"
	EventNiceListChecked EventType = "nice_list_checked"
)

// ToolCall is one function invocation from the dialogue driver.
type ToolCall struct {
	Function   string         `json:"function"`
	Arguments  map[string]any `json:"arguments"`
	GlobalData statex.Bag     `json:"global_data"`
	CallID     string         `json:"call_id,omitempty"`
}

// UIEvent is a structured notification for the client display.
type UIEvent struct {
	Type   EventType         `json:"type"`
	Query  string            `json:"query,omitempty"`
	Gifts  []statex.GiftItem `json:"gifts,omitempty"`
	Gift   *statex.GiftItem  `json:"gift,omitempty"`
	Name   string            `json:"name,omitempty"`
	Status string            `json:"status,omitempty"`
}

// ToolReply is what goes back to the driver: text to speak, the updated bag,
// at most one event and an optional step change.
type ToolReply struct {
	Response   string     `json:"response"`
	GlobalData statex.Bag `json:"global_data"`
	Events     []UIEvent  `json:"events,omitempty"`
	Step       string     `json:"step,omitempty"`
	CallID     string     `json:"call_id,omitempty"`
}

// ToolResult is the executor's outcome before the state is saved.
type ToolResult struct {
	Tool     string   `json:"tool"`
	Response string   `json:"response"`
	Event    *UIEvent `json:"event,omitempty"`
	Step     string   `json:"step,omitempty"`
}
