package routernode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
)

func DispatchTool(
	ctx context.Context,
	in *GraphState,
	executor contractx.ToolExecutor,
) (*GraphState, error) {
	if in == nil || in.Gift == nil {
		return nil, fmt.Errorf("%w: gift state is not loaded", contractx.ErrValidation)
	}

	result, err := executor.Execute(ctx, in.Call.Function, in.Call.Arguments, in.Gift)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("call_id", in.Call.CallID).
		Str("tool", in.Call.Function).
		Str("state", string(in.Gift.State)).
		Msg("tool executed")

	in.Result = result
	return in, nil
}
