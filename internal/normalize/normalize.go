// Package normalize parses free-text amount ranges and heterogeneous date
// strings from disclosure feeds into typed values. Both functions are pure
// and never fail: malformed input degrades to nil.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmountRange parses amount text like "$1,001 - $15,000" into (min, max).
// A single numeric amount yields (v, v); anything unparseable yields
// (nil, nil) so a bad amount reads as "unknown", never as an error.
func ParseAmountRange(text string) (*decimal.Decimal, *decimal.Decimal) {
	s := strings.NewReplacer("$", "", ",", "").Replace(text)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if parts := strings.Split(s, "-"); len(parts) == 2 {
		lo, loErr := decimal.NewFromString(strings.TrimSpace(parts[0]))
		hi, hiErr := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if loErr != nil || hiErr != nil {
			return nil, nil
		}
		return &lo, &hi
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil, nil
	}
	return &v, &v
}

// dateLayouts are tried in order; month-first forms come before day-first
// ambiguity ever arises, matching the feeds' US-locale convention.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/06",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate leniently parses a feed date string, returning nil when no known
// layout matches.
func ParseDate(text string) *time.Time {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
