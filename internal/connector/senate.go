package connector

import (
	"context"
	"strings"

	"github.com/openfiling/disclosure-cli/internal/fetcher"
	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/normalize"
)

// SourceSenate is the provenance identifier for the US Senate feed.
const SourceSenate = "us_senate_csv"

// Senate fetches the US Senate stock-watcher aggregate CSV. The Senate feed
// carries no owner or state columns; owner degrades to unknown.
type Senate struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewSenate creates the US Senate feed connector.
func NewSenate(f fetcher.Fetcher, url string) *Senate {
	return &Senate{fetcher: f, url: url}
}

func (s *Senate) Name() string      { return SourceSenate }
func (s *Senate) SourceURL() string { return s.url }

func (s *Senate) Fetch(ctx context.Context, limit int) ([]model.Record, error) {
	if s.url == "" {
		return nil, nil
	}
	rows, err := fetchRows(ctx, s.fetcher, s.url, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		amount := r.get("amount")
		amountMin, amountMax := normalize.ParseAmountRange(amount)
		out = append(out, model.Record{
			Source:          SourceSenate,
			SourceURL:       s.url,
			OfficialName:    r.first("senator", "name"),
			Chamber:         model.ChamberSenate,
			Ticker:          r.get("ticker"),
			Issuer:          r.get("asset_description"),
			TransactionType: strings.ToLower(r.get("type")),
			Owner:           string(model.OwnerUnknown),
			Amount:          amount,
			AmountMin:       amountMin,
			AmountMax:       amountMax,
			TradeDate:       r.first("transaction_date", "date", "disclosure_date"),
			ReportedDate:    r.get("disclosure_date"),
			FilingURL:       r.get("link"),
		})
	}
	return out, nil
}
