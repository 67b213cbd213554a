package search

import (
	"math"
	"strconv"
	"strings"
)

// PriceCheck is the outcome of testing a display price against bounds.
type PriceCheck int

const (
	PriceUnparseable PriceCheck = iota
	PriceInRange
	PriceOutOfRange
)

func (c PriceCheck) String() string {
	switch c {
	case PriceInRange:
		return "in_range"
	case PriceOutOfRange:
		return "out_of_range"
	default:
		return "unparseable"
	}
}

var priceNoise = strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "")

// ParsePrice extracts the numeric amount from a display price such as
// "$1,299.99" or "$24.99 - $31.99" (the first amount wins).
func ParsePrice(display string) (float64, bool) {
	fields := strings.Fields(priceNoise.Replace(display))
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CheckPrice reports where display falls relative to [min, max]. Both bounds
// are inclusive.
func CheckPrice(display string, min, max float64) PriceCheck {
	v, ok := ParsePrice(display)
	if !ok {
		return PriceUnparseable
	}
	if v < min || v > max {
		return PriceOutOfRange
	}
	return PriceInRange
}
