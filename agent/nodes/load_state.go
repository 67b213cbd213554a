package routernode

import (
	"fmt"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

func LoadState(in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(in.Call.GlobalData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrBadState, err)
	}
	in.Gift = st
	return in, nil
}
