package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
)

const defaultBagKey = "gift_state"

// Config is loaded without a prefix.
type Config struct {
	BagKey string `envconfig:"GIFT_STATE_KEY" default:"gift_state"`
}

var ErrNilBagState = errors.New("gift state to save is nil")

// Bag is the per-call data bag supplied by the dialogue driver (global_data).
// It is decoded JSON, so nested values are maps, slices and scalars.
type Bag map[string]any

// Store is the persistence contract used by the router. Implementations must
// not keep state between calls; everything lives in the bag.
type Store interface {
	Load(bag Bag) (*GiftState, error)
	Save(bag Bag, st *GiftState) (Bag, error)
}

// StoreOption customizes BagStore.
type StoreOption func(*BagStore)

func WithBagKey(key string) StoreOption {
	return func(s *BagStore) {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			s.key = trimmed
		}
	}
}

// BagStore keeps GiftState under a single key of the session bag.
type BagStore struct {
	key string
}

func NewBagStore(opts ...StoreOption) *BagStore {
	store := &BagStore{key: defaultBagKey}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Load decodes the gift state from bag. A missing or null entry yields the
// defaults; unknown fields are ignored.
func (s *BagStore) Load(bag Bag) (*GiftState, error) {
	st := NewGiftState()

	raw, ok := bag[s.key]
	if !ok || raw == nil {
		return st, nil
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode bag entry %q: %w", s.key, err)
	}
	if err := json.Unmarshal(payload, st); err != nil {
		return nil, fmt.Errorf("decode gift state: %w", err)
	}

	st.normalize()
	st.demoteStaleSelection()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gift state loaded from bag: %w", err)
	}
	return st, nil
}

// Save returns a copy of bag with st stored under the store key. The input
// bag is not modified.
func (s *BagStore) Save(bag Bag, st *GiftState) (Bag, error) {
	if st == nil {
		return nil, ErrNilBagState
	}
	st.normalize()
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save gift state: %w", err)
	}

	payload, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal gift state: %w", err)
	}
	var encoded map[string]any
	if err := json.Unmarshal(payload, &encoded); err != nil {
		return nil, fmt.Errorf("re-decode gift state: %w", err)
	}

	out := make(Bag, len(bag)+1)
	maps.Copy(out, bag)
	out[s.key] = encoded
	return out, nil
}
