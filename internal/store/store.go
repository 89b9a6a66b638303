// Package store provides Postgres persistence for officials, trades,
// provenance rows, ingest-run logging, and alert rules.
package store

import (
	"context"
	"time"

	"github.com/openfiling/disclosure-cli/internal/model"
)

// OfficialFilter specifies criteria for listing officials.
type OfficialFilter struct {
	Chamber model.Chamber `json:"chamber,omitempty"`
	Limit   int           `json:"limit,omitempty"`
	Offset  int           `json:"offset,omitempty"`
}

// TradeFilter specifies criteria for listing trades.
type TradeFilter struct {
	OfficialID   int64         `json:"official_id,omitempty"`
	Ticker       string        `json:"ticker,omitempty"`
	TxType       model.TxType  `json:"transaction_type,omitempty"`
	Chamber      model.Chamber `json:"chamber,omitempty"`
	CreatedAfter *time.Time    `json:"created_after,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	Offset       int           `json:"offset,omitempty"`
}

// TradeRow is a trade joined with its official's name and chamber for API
// listings, exports, and alert matching.
type TradeRow struct {
	model.Trade
	OfficialName    string        `json:"official_name"`
	OfficialChamber model.Chamber `json:"official_chamber"`
}

// RunStatus is the lifecycle state of an ingest run.
type RunStatus string

const (
	RunRunning  RunStatus = "running"
	RunComplete RunStatus = "complete"
	RunFailed   RunStatus = "failed"
)

// IngestRun is one row of the ingest-run log.
type IngestRun struct {
	ID          int64      `json:"id"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Fetched     int        `json:"fetched"`
	Unique      int        `json:"unique"`
	Added       int        `json:"added"`
	Error       string     `json:"error,omitempty"`
}

// Store defines the persistence interface for the ingestion pipeline and API.
type Store interface {
	// Officials
	FindOfficial(ctx context.Context, name string, chamber model.Chamber) (*model.Official, error)
	CreateOfficial(ctx context.Context, o *model.Official) error
	GetOfficial(ctx context.Context, id int64) (*model.Official, error)
	ListOfficials(ctx context.Context, filter OfficialFilter) ([]model.Official, error)

	// Trades
	TradeExists(ctx context.Context, officialID int64, tradeDate *time.Time, ticker, issuer string, txType model.TxType) (bool, error)
	CreateTrade(ctx context.Context, t *model.Trade) error
	GetTrade(ctx context.Context, id int64) (*TradeRow, error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]TradeRow, error)

	// Provenance
	CreateTradeSource(ctx context.Context, s *model.TradeSource) error
	ListTradeSources(ctx context.Context, tradeID int64) ([]model.TradeSource, error)

	// Ingest-run log
	StartIngestRun(ctx context.Context) (int64, error)
	CompleteIngestRun(ctx context.Context, runID int64, fetched, unique, added int) error
	FailIngestRun(ctx context.Context, runID int64, errMsg string) error
	ListIngestRuns(ctx context.Context, limit int) ([]IngestRun, error)

	// Alert rules
	CreateAlertRule(ctx context.Context, r *model.AlertRule) error
	ListAlertRules(ctx context.Context, activeOnly bool) ([]model.AlertRule, error)
	DeleteAlertRule(ctx context.Context, id int64) (bool, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
