package connector

import (
	"context"
	"strings"

	"github.com/openfiling/disclosure-cli/internal/fetcher"
	"github.com/openfiling/disclosure-cli/internal/model"
)

// SourceUK is the provenance identifier for the UK register feed.
const SourceUK = "uk_csv"

// UKRegister fetches an optional custom UK members' register CSV. There is no
// public aggregate feed, so this connector is a no-op until a URL is
// configured. Amounts are left raw for the engine to parse.
type UKRegister struct {
	fetcher fetcher.Fetcher
	url     string
}

// NewUKRegister creates the UK register feed connector.
func NewUKRegister(f fetcher.Fetcher, url string) *UKRegister {
	return &UKRegister{fetcher: f, url: url}
}

func (u *UKRegister) Name() string      { return SourceUK }
func (u *UKRegister) SourceURL() string { return u.url }

func (u *UKRegister) Fetch(ctx context.Context, limit int) ([]model.Record, error) {
	if u.url == "" {
		return nil, nil
	}
	rows, err := fetchRows(ctx, u.fetcher, u.url, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Record{
			Source:          SourceUK,
			SourceURL:       u.url,
			OfficialName:    r.first("member", "name"),
			Chamber:         model.ChamberOther,
			Ticker:          r.get("ticker"),
			Issuer:          r.first("company", "security"),
			TransactionType: strings.ToLower(r.get("type")),
			Owner:           string(model.OwnerUnknown),
			Amount:          r.get("amount"),
			TradeDate:       r.first("date", "trade_date"),
			ReportedDate:    r.get("filed_date"),
			FilingURL:       r.get("url"),
		})
	}
	return out, nil
}
