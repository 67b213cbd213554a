// Package search turns raw catalog records into at most three presentable,
// price-filtered gift options.
package search

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/gift-concierge/agent/catalog"
	"github.com/tanpawarit/gift-concierge/agent/state"
)

const (
	maxDescriptionRunes = 200
	priceNotAvailable   = "Price not available"
	amazonProductURL    = "https://www.amazon.com/dp/"
)

// Config is loaded without a prefix so the variables read MIN_GIFT_PRICE and
// MAX_GIFT_PRICE.
type Config struct {
	MinPrice float64 `envconfig:"MIN_GIFT_PRICE" default:"10.00"`
	MaxPrice float64 `envconfig:"MAX_GIFT_PRICE" default:"100.00"`
}

type Engine struct {
	source   catalog.Source
	minPrice float64
	maxPrice float64
}

func NewEngine(source catalog.Source, cfg Config) *Engine {
	return &Engine{source: source, minPrice: cfg.MinPrice, maxPrice: cfg.MaxPrice}
}

// Bounds returns the configured default price range.
func (e *Engine) Bounds() (float64, float64) {
	return e.minPrice, e.maxPrice
}

// Search scans catalog records in order and keeps the first MaxResults that
// have a title and an image and whose price is in range or cannot be parsed.
// An empty slice is a normal outcome.
func (e *Engine) Search(ctx context.Context, query string, priceMin, priceMax float64) []state.GiftItem {
	records := e.source.Fetch(ctx, query)

	items := make([]state.GiftItem, 0, state.MaxResults)
	for _, rec := range records {
		if len(items) == state.MaxResults {
			break
		}
		if rec.Title == "" || rec.Photo == "" {
			continue
		}

		check := CheckPrice(rec.Price, priceMin, priceMax)
		if check == PriceOutOfRange {
			log.Debug().Str("title", rec.Title).Str("price", rec.Price).Msg("gift skipped, price out of range")
			continue
		}
		if check == PriceUnparseable {
			log.Debug().Str("title", rec.Title).Str("price", rec.Price).Msg("gift price unparseable, keeping it")
		}

		items = append(items, toGiftItem(len(items)+1, rec))
	}

	log.Info().
		Str("query", query).
		Int("records", len(records)).
		Int("gifts", len(items)).
		Msg("gift search finished")
	return items
}

func toGiftItem(id int, rec catalog.Product) state.GiftItem {
	price := rec.Price
	if price == "" {
		price = priceNotAvailable
	}

	link := rec.URL
	if link == "" {
		if rec.ASIN != "" {
			link = amazonProductURL + rec.ASIN
		} else {
			link = "#"
		}
	}

	desc := strings.TrimSpace(rec.Description)
	if desc == "" {
		desc = rec.Title + " - Great gift for kids!"
	} else {
		desc = truncateRunes(desc, maxDescriptionRunes)
	}

	return state.GiftItem{
		ID:          id,
		Title:       rec.Title,
		Price:       price,
		Image:       rec.Photo,
		URL:         link,
		Description: desc,
		Rating:      string(rec.Rating),
		ASIN:        rec.ASIN,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
