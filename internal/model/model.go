// Package model defines the persisted entities and the intermediate record
// shape shared by the connectors and the reconciliation engine.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Official is a public office holder whose disclosed trades are tracked.
// (Name, Chamber) is the find-or-create key; it is deliberately not unique in
// the schema, so spelling drift in the feeds can create near-duplicates.
type Official struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Chamber    Chamber   `json:"chamber"`
	Role       string    `json:"role"`
	State      string    `json:"state"`
	Committees string    `json:"committees"`
	CreatedAt  time.Time `json:"created_at"`
}

// Trade is one disclosed transaction. Immutable after insert; duplicates are
// detected on (OfficialID, TradeDate, Ticker, Issuer, TransactionType) only.
type Trade struct {
	ID              int64            `json:"id"`
	OfficialID      int64            `json:"official_id"`
	FilingURL       string           `json:"filing_url"`
	TransactionType TxType           `json:"transaction_type"`
	Owner           Owner            `json:"owner"`
	TradeDate       *time.Time       `json:"trade_date"`
	ReportedDate    *time.Time       `json:"reported_date"`
	Ticker          string           `json:"ticker"`
	Issuer          string           `json:"issuer"`
	AmountMin       *decimal.Decimal `json:"amount_min"`
	AmountMax       *decimal.Decimal `json:"amount_max"`
	CreatedAt       time.Time        `json:"created_at"`
}

// TradeSource is the append-only provenance row written for each persisted
// trade: which feed produced it and a snapshot of the raw record.
type TradeSource struct {
	ID          int64     `json:"id"`
	TradeID     int64     `json:"trade_id"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	RawJSON     string    `json:"raw_json"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// Record is the common intermediate shape every connector produces. It lives
// only for the duration of one ingestion run and is never persisted as an
// entity, though its JSON form is snapshotted into TradeSource.RawJSON.
type Record struct {
	Source       string  `json:"source"`
	SourceURL    string  `json:"source_url"`
	OfficialName string  `json:"official_name"`
	Chamber      Chamber `json:"chamber"`
	State        string  `json:"state,omitempty"`
	Ticker       string  `json:"ticker,omitempty"`
	Issuer       string  `json:"issuer,omitempty"`

	// TransactionType and Owner are raw lower-cased feed strings; enum
	// resolution happens in the reconciliation engine.
	TransactionType string `json:"transaction_type"`
	Owner           string `json:"owner"`

	// Amount is the raw range text; AmountMin/AmountMax are set when the
	// connector already parsed it.
	Amount    string           `json:"amount,omitempty"`
	AmountMin *decimal.Decimal `json:"amount_min"`
	AmountMax *decimal.Decimal `json:"amount_max"`

	// Dates as given by the feed; parsed leniently at persist time.
	TradeDate    string `json:"trade_date,omitempty"`
	ReportedDate string `json:"reported_date,omitempty"`

	FilingURL string `json:"filing_url"`
}
