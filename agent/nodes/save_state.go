package routernode

import (
	"fmt"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

func SaveState(in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Gift == nil {
		return nil, fmt.Errorf("%w: gift state is nil", contractx.ErrValidation)
	}

	bag, err := store.Save(in.Call.GlobalData, in.Gift)
	if err != nil {
		return nil, fmt.Errorf("save gift state: %w", err)
	}
	in.Bag = bag
	return in, nil
}
