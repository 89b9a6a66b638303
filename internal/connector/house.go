package connector

import (
	"context"
	"strings"

	"github.com/openfiling/disclosure-cli/internal/fetcher"
	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/normalize"
)

// SourceHouse is the provenance identifier for the US House feed.
const SourceHouse = "us_house_csv"

// House fetches the US House stock-watcher aggregate CSV.
type House struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewHouse creates the US House feed connector.
func NewHouse(f fetcher.Fetcher, url string) *House {
	return &House{fetcher: f, url: url}
}

func (h *House) Name() string      { return SourceHouse }
func (h *House) SourceURL() string { return h.url }

// Fetch maps the House CSV columns onto canonical records. Amount ranges are
// parsed eagerly since the feed always carries them as "$lo - $hi" text.
func (h *House) Fetch(ctx context.Context, limit int) ([]model.Record, error) {
	if h.url == "" {
		return nil, nil
	}
	rows, err := fetchRows(ctx, h.fetcher, h.url, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		amount := r.get("amount")
		amountMin, amountMax := normalize.ParseAmountRange(amount)
		owner := r.get("owner")
		if owner == "" {
			owner = "unknown"
		}
		out = append(out, model.Record{
			Source:          SourceHouse,
			SourceURL:       h.url,
			OfficialName:    r.first("representative", "name"),
			Chamber:         model.ChamberHouse,
			State:           r.get("state"),
			Ticker:          r.get("ticker"),
			Issuer:          r.get("asset_description"),
			TransactionType: strings.ToLower(r.get("type")),
			Owner:           strings.ToLower(owner),
			Amount:          amount,
			AmountMin:       amountMin,
			AmountMax:       amountMax,
			TradeDate:       r.get("transaction_date"),
			ReportedDate:    r.first("disclosure_date", "filed_date"),
			FilingURL:       r.get("ptr_link"),
		})
	}
	return out, nil
}
