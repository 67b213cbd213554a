package tool

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/gift-concierge/agent/contract"
	statex "github.com/tanpawarit/gift-concierge/agent/state"
)

const (
	StepPresentingOptions = "presenting_options"
	StepGiftConfirmed     = "gift_confirmed"
	niceStatus            = "nice"
)

// Executor runs the gift tools against a loaded GiftState. It mutates the
// state in place; the caller is responsible for saving it.
type Executor struct {
	searcher contractx.GiftSearcher
	notifier contractx.Notifier
	intn     func(n int) int
}

type ExecutorOption func(*Executor)

func WithNotifier(n contractx.Notifier) ExecutorOption {
	return func(e *Executor) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithRandom replaces the source used to pick a nice-list phrasing. intn must
// return a value in [0, n).
func WithRandom(intn func(n int) int) ExecutorOption {
	return func(e *Executor) {
		if intn != nil {
			e.intn = intn
		}
	}
}

func NewExecutor(searcher contractx.GiftSearcher, opts ...ExecutorOption) (*Executor, error) {
	if searcher == nil {
		return nil, errors.New("gift searcher is required")
	}
	e := &Executor{
		searcher: searcher,
		notifier: NopNotifier{},
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Execute dispatches one validated tool call.
func (e *Executor) Execute(ctx context.Context, tool string, args map[string]any, st *statex.GiftState) (contractx.ToolResult, error) {
	if st == nil {
		return contractx.ToolResult{}, fmt.Errorf("%w: gift state is nil", contractx.ErrValidation)
	}
	switch tool {
	case ToolSearchGifts:
		return e.searchGifts(ctx, args, st), nil
	case ToolSelectGift:
		return e.selectGift(args, st), nil
	case ToolCheckNiceList:
		return e.checkNiceList(args, st), nil
	default:
		return contractx.ToolResult{}, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, tool)
	}
}

func (e *Executor) searchGifts(ctx context.Context, args map[string]any, st *statex.GiftState) contractx.ToolResult {
	query := strings.TrimSpace(stringArg(args, "query"))
	if age, ok := intArg(args, "child_age"); ok {
		def, _ := Lookup(ToolSearchGifts)
		if p, ok := def.Param("child_age"); ok && OutsideAdvertisedRange(p, age) {
			log.Debug().Int64("child_age", age).Msg("child_age outside advertised range, ignoring")
		}
		log.Debug().Str("query", query).Int64("child_age", age).Msg("search_gifts called")
	}

	e.notifier.Notify(ctx, contractx.UIEvent{Type: contractx.EventSearching, Query: query})

	priceMin, priceMax := e.searcher.Bounds()
	items := e.searcher.Search(ctx, query, priceMin, priceMax)
	if len(items) > statex.MaxResults {
		items = items[:statex.MaxResults]
	}

	if len(items) == 0 {
		st.SearchFailed(query)
		return contractx.ToolResult{
			Tool:     ToolSearchGifts,
			Response: searchFailedText,
			Event:    &contractx.UIEvent{Type: contractx.EventSearchFailed, Query: query},
		}
	}

	st.PresentOptions(query, items)
	return contractx.ToolResult{
		Tool:     ToolSearchGifts,
		Response: giftsFoundText(items),
		Event: &contractx.UIEvent{
			Type:  contractx.EventGiftsFound,
			Query: query,
			Gifts: append([]statex.GiftItem(nil), items...),
		},
		Step: StepPresentingOptions,
	}
}

func (e *Executor) selectGift(args map[string]any, st *statex.GiftState) contractx.ToolResult {
	choice, _ := intArg(args, "gift_choice")

	gift, err := st.Select(int(choice))
	if errors.Is(err, statex.ErrNoSearchResults) {
		log.Debug().Int64("gift_choice", choice).Msg("select_gift before any search")
		return contractx.ToolResult{Tool: ToolSelectGift, Response: searchFirstText}
	}
	if err != nil {
		log.Debug().Err(err).Msg("select_gift out of range")
		return contractx.ToolResult{Tool: ToolSelectGift, Response: selectionRangeText(choice, len(st.GiftSearchResults))}
	}

	log.Info().Int64("gift_choice", choice).Str("title", gift.Title).Msg("gift selected")
	return contractx.ToolResult{
		Tool:     ToolSelectGift,
		Response: giftSelectedText(gift),
		Event:    &contractx.UIEvent{Type: contractx.EventGiftSelected, Gift: &gift},
		Step:     StepGiftConfirmed,
	}
}

func (e *Executor) checkNiceList(args map[string]any, st *statex.GiftState) contractx.ToolResult {
	name := stringArg(args, "name")
	if strings.TrimSpace(name) == "" {
		name = defaultChildName
	}

	idx := e.intn(len(niceListTemplates))
	if idx < 0 || idx >= len(niceListTemplates) {
		idx = 0
	}

	st.MarkNiceList(name)
	return contractx.ToolResult{
		Tool:     ToolCheckNiceList,
		Response: niceListText(niceListTemplates[idx], name),
		Event:    &contractx.UIEvent{Type: contractx.EventNiceListChecked, Name: name, Status: niceStatus},
	}
}
