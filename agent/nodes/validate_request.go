package routernode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
	toolx "github.com/tanpawarit/gift-concierge/agent/tool"
)

type GraphInput struct {
	Call contractx.ToolCall
}

type GraphOutput struct {
	Reply contractx.ToolReply
}

type GraphState struct {
	Call contractx.ToolCall

	Gift   *statex.GiftState
	Result contractx.ToolResult
	Bag    statex.Bag
}

func ValidateRequest(in GraphInput, newCallID func() string) (*GraphState, error) {
	call := in.Call
	call.Function = strings.TrimSpace(call.Function)
	if call.Function == "" {
		return nil, fmt.Errorf("%w: function name is empty", contractx.ErrValidation)
	}

	def, ok := toolx.Lookup(call.Function)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", contractx.ErrValidation, contractx.ErrUnknownTool, call.Function)
	}

	if call.Arguments == nil {
		call.Arguments = map[string]any{}
	}
	if err := toolx.ValidateArgs(def, call.Arguments); err != nil {
		return nil, err
	}

	if strings.TrimSpace(call.CallID) == "" {
		call.CallID = newCallID()
	}

	return &GraphState{Call: call}, nil
}
