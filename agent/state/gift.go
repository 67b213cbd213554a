package state

import (
	"errors"
	"fmt"
)

// MaxResults bounds gift_search_results; option numbers are 1..MaxResults.
const MaxResults = 3

// FlowState is the conversation step the gift flow is in.
type FlowState string

const (
	StateGreeting          FlowState = "greeting"
	StatePresentingOptions FlowState = "presenting_options"
	StateSearchFailed      FlowState = "search_failed"
	StateGiftConfirmed     FlowState = "gift_confirmed"
)

func (s FlowState) Valid() bool {
	switch s {
	case StateGreeting, StatePresentingOptions, StateSearchFailed, StateGiftConfirmed:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidFlowState = errors.New("invalid flow state")
	ErrTooManyResults   = errors.New("too many gift search results")
	ErrStaleSelection   = errors.New("selected gift is not in current results")
	ErrSelectionRange   = errors.New("gift choice out of range")
	ErrNoSearchResults  = errors.New("no gift search results")
	ErrNilGiftState     = errors.New("gift state is nil")
)

// GiftItem is one product offered to the child. ID is the 1-based option number.
type GiftItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Rating      string `json:"rating,omitempty"`
	ASIN        string `json:"asin,omitempty"`
}

// GiftState is the per-conversation record threaded through the session bag.
//
// SearchGeneration counts searches; SelectedGeneration records which search
// SelectedGift was taken from. A selection made before the latest search is
// kept for reference but no longer counts as current.
type GiftState struct {
	SearchQuery        string     `json:"search_query"`
	GiftSearchResults  []GiftItem `json:"gift_search_results"`
	SelectedGift       *GiftItem  `json:"selected_gift"`
	State              FlowState  `json:"state"`
	NiceListChecked    bool       `json:"nice_list_checked"`
	ChildName          string     `json:"child_name,omitempty"`
	SearchGeneration   int        `json:"search_generation,omitempty"`
	SelectedGeneration int        `json:"selected_generation,omitempty"`
}

func NewGiftState() *GiftState {
	return &GiftState{
		GiftSearchResults: []GiftItem{},
		State:             StateGreeting,
	}
}

// normalize fills defaults for fields an older or foreign writer left out.
func (s *GiftState) normalize() {
	if s.GiftSearchResults == nil {
		s.GiftSearchResults = []GiftItem{}
	}
	if s.State == "" {
		s.State = StateGreeting
	}
}

// demoteStaleSelection handles bags written without generation counters: a
// selection that is not among the stored results is kept but marked stale.
func (s *GiftState) demoteStaleSelection() {
	sel, ok := s.CurrentSelection()
	if !ok {
		return
	}
	for _, item := range s.GiftSearchResults {
		if item == sel {
			return
		}
	}
	s.SelectedGeneration = s.SearchGeneration - 1
}

// PresentOptions records a successful search.
func (s *GiftState) PresentOptions(query string, items []GiftItem) {
	s.SearchGeneration++
	s.SearchQuery = query
	s.GiftSearchResults = append([]GiftItem(nil), items...)
	s.State = StatePresentingOptions
}

// SearchFailed records a search that produced no usable gifts.
func (s *GiftState) SearchFailed(query string) {
	s.SearchGeneration++
	s.SearchQuery = query
	s.GiftSearchResults = []GiftItem{}
	s.State = StateSearchFailed
}

// Select marks results[choice-1] as the chosen gift. It leaves the state
// untouched and returns an error when there is nothing to choose from or the
// choice is outside 1..len(results).
func (s *GiftState) Select(choice int) (GiftItem, error) {
	n := len(s.GiftSearchResults)
	if n == 0 {
		return GiftItem{}, ErrNoSearchResults
	}
	if choice < 1 || choice > n {
		return GiftItem{}, fmt.Errorf("%w: choice=%d valid=1..%d", ErrSelectionRange, choice, n)
	}

	gift := s.GiftSearchResults[choice-1]
	s.SelectedGift = &gift
	s.SelectedGeneration = s.SearchGeneration
	s.State = StateGiftConfirmed
	return gift, nil
}

// CurrentSelection returns the selected gift only if it came from the latest search.
func (s *GiftState) CurrentSelection() (GiftItem, bool) {
	if s == nil || s.SelectedGift == nil || s.SelectedGeneration != s.SearchGeneration {
		return GiftItem{}, false
	}
	return *s.SelectedGift, true
}

// MarkNiceList records that the nice list was checked for name.
func (s *GiftState) MarkNiceList(name string) {
	s.NiceListChecked = true
	s.ChildName = name
}

func (s *GiftState) Validate() error {
	if s == nil {
		return ErrNilGiftState
	}
	if !s.State.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFlowState, s.State)
	}
	if len(s.GiftSearchResults) > MaxResults {
		return fmt.Errorf("%w: %d > %d", ErrTooManyResults, len(s.GiftSearchResults), MaxResults)
	}
	if sel, ok := s.CurrentSelection(); ok {
		found := false
		for _, item := range s.GiftSearchResults {
			if item == sel {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q", ErrStaleSelection, sel.Title)
		}
	}
	return nil
}
