package catalog

import (
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fallbackPrice = "$49.99"
	fallbackImage = "https://via.placeholder.com/300x300?text=Gift"
)

//go:embed offline.json
var offlineRaw []byte

type offlineEntry struct {
	Keyword  string    `json:"keyword"`
	Products []Product `json:"products"`
}

var offlineEntries = loadOffline(offlineRaw)

func loadOffline(raw []byte) []offlineEntry {
	var entries []offlineEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Error().Err(err).Msg("offline catalog is malformed, only synthesized gifts will be offered")
		return nil
	}
	return entries
}

// Offline returns the deterministic catalog used when the live API is
// unavailable. Entries are matched in file order by keyword containment; with
// no match a single gift is synthesized from the query.
func Offline(query string) []Product {
	lower := strings.ToLower(query)
	for _, entry := range offlineEntries {
		if entry.Keyword != "" && strings.Contains(lower, entry.Keyword) {
			return append([]Product(nil), entry.Products...)
		}
	}

	return []Product{{
		Title:       "Wonderful " + cases.Title(language.English).String(query),
		Price:       fallbackPrice,
		Photo:       fallbackImage,
		URL:         "#",
		Description: "A perfect " + query + " for Christmas!",
	}}
}
