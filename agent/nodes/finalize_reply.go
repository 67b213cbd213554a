package routernode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if strings.TrimSpace(in.Result.Response) == "" {
		return GraphOutput{}, fmt.Errorf("%w: tool %s returned empty response", contractx.ErrValidation, in.Call.Function)
	}

	reply := contractx.ToolReply{
		Response:   in.Result.Response,
		GlobalData: in.Bag,
		Step:       in.Result.Step,
		CallID:     in.Call.CallID,
	}
	if in.Result.Event != nil {
		reply.Events = []contractx.UIEvent{*in.Result.Event}
	}
	return GraphOutput{Reply: reply}, nil
}
