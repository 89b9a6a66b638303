package connector

import (
	"strings"

	"github.com/openfiling/disclosure-cli/internal/model"
)

// dedupeKey is the composite identity of a record within one fetch batch.
// The security component prefers ticker, falling back to issuer, and the
// trade date is compared as given by the feed (unparsed).
type dedupeKey struct {
	source    string
	name      string
	security  string
	tradeDate string
}

// Dedupe removes duplicate records within a batch, keeping the first
// occurrence per key in input order. This is an intra-batch filter only:
// already-persisted trades are handled later by the reconciliation engine's
// existence check.
func Dedupe(records []model.Record) []model.Record {
	seen := make(map[dedupeKey]struct{}, len(records))
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		security := r.Ticker
		if security == "" {
			security = r.Issuer
		}
		key := dedupeKey{
			source:    r.Source,
			name:      strings.TrimSpace(r.OfficialName),
			security:  security,
			tradeDate: r.TradeDate,
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
