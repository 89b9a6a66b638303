package web

import (
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/openfiling/disclosure-cli/internal/store"
)

// tradeCSVRow is the flat CSV projection of a trade.
type tradeCSVRow struct {
	ID              int64  `csv:"id"`
	Official        string `csv:"official"`
	Chamber         string `csv:"chamber"`
	TransactionType string `csv:"transaction_type"`
	Owner           string `csv:"owner"`
	Ticker          string `csv:"ticker"`
	Issuer          string `csv:"issuer"`
	TradeDate       string `csv:"trade_date"`
	ReportedDate    string `csv:"reported_date"`
	AmountMin       string `csv:"amount_min"`
	AmountMax       string `csv:"amount_max"`
	FilingURL       string `csv:"filing_url"`
}

// WriteTradesCSV writes trades as CSV with a header row. Null dates and
// amounts become empty cells.
func WriteTradesCSV(w io.Writer, trades []store.TradeRow) error {
	rows := make([]tradeCSVRow, 0, len(trades))
	for _, t := range trades {
		row := tradeCSVRow{
			ID:              t.ID,
			Official:        t.OfficialName,
			Chamber:         string(t.OfficialChamber),
			TransactionType: string(t.TransactionType),
			Owner:           string(t.Owner),
			Ticker:          t.Ticker,
			Issuer:          t.Issuer,
			FilingURL:       t.FilingURL,
		}
		if t.TradeDate != nil {
			row.TradeDate = t.TradeDate.Format("2006-01-02")
		}
		if t.ReportedDate != nil {
			row.ReportedDate = t.ReportedDate.Format("2006-01-02")
		}
		if t.AmountMin != nil {
			row.AmountMin = t.AmountMin.String()
		}
		if t.AmountMax != nil {
			row.AmountMax = t.AmountMax.String()
		}
		rows = append(rows, row)
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "web: marshal trades csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "web: write trades csv")
	}
	return nil
}
