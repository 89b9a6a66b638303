// Package ingest reconciles fetched disclosure records into the database.
package ingest

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/archive"
	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/normalize"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// Engine persists normalized records, skipping trades that already exist.
type Engine struct {
	store    store.Store
	archiver archive.Archiver
	log      *zap.Logger
}

// NewEngine builds an Engine. A nil archiver disables archival.
func NewEngine(st store.Store, ar archive.Archiver) *Engine {
	if ar == nil {
		ar = archive.Disabled{}
	}
	return &Engine{
		store:    st,
		archiver: ar,
		log:      zap.L().With(zap.String("component", "ingest.engine")),
	}
}

// provenancePayload wraps a record with its archive key once the raw payload
// has been written to object storage.
type provenancePayload struct {
	Local      model.Record `json:"local"`
	ArchiveKey string       `json:"archive_key"`
}

// Persist reconciles records into the store and returns the trades it added,
// each joined with its official. Returning the rows directly lets callers
// count and alert on exactly what this run inserted, without a timestamp
// re-query that a concurrent writer or clock skew could pollute. Records
// whose natural key (official, trade date, security, transaction type)
// already exists are skipped without merging. Provenance and archival
// failures are logged and discarded; store failures abort the batch.
//
// The existence check and insert are not atomic. In-process callers serialize
// runs through the job executor; concurrent writers in other processes can
// still race in a duplicate.
func (e *Engine) Persist(ctx context.Context, records []model.Record, defaultSourceURL string) ([]store.TradeRow, error) {
	var added []store.TradeRow
	for _, rec := range records {
		name := strings.TrimSpace(rec.OfficialName)
		if name == "" {
			name = "Unknown"
		}
		chamber := model.ParseChamber(string(rec.Chamber))

		official, err := e.findOrCreateOfficial(ctx, name, chamber, rec.State)
		if err != nil {
			return added, err
		}

		txType := model.ResolveTxType(rec.TransactionType)
		owner := model.ResolveOwner(rec.Owner)
		tradeDate := normalize.ParseDate(rec.TradeDate)
		reportedDate := normalize.ParseDate(rec.ReportedDate)

		amountMin, amountMax := rec.AmountMin, rec.AmountMax
		if amountMin == nil && amountMax == nil {
			amountMin, amountMax = normalize.ParseAmountRange(rec.Amount)
		}

		ticker := strings.TrimSpace(rec.Ticker)
		issuer := strings.TrimSpace(rec.Issuer)

		exists, err := e.store.TradeExists(ctx, official.ID, tradeDate, ticker, issuer, txType)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}

		trade := &model.Trade{
			OfficialID:      official.ID,
			FilingURL:       rec.FilingURL,
			TransactionType: txType,
			Owner:           owner,
			TradeDate:       tradeDate,
			ReportedDate:    reportedDate,
			Ticker:          ticker,
			Issuer:          issuer,
			AmountMin:       amountMin,
			AmountMax:       amountMax,
		}
		if err := e.store.CreateTrade(ctx, trade); err != nil {
			return added, err
		}
		added = append(added, store.TradeRow{
			Trade:           *trade,
			OfficialName:    official.Name,
			OfficialChamber: official.Chamber,
		})

		e.recordProvenance(ctx, trade.ID, rec, defaultSourceURL)
	}
	return added, nil
}

func (e *Engine) findOrCreateOfficial(ctx context.Context, name string, chamber model.Chamber, state string) (*model.Official, error) {
	official, err := e.store.FindOfficial(ctx, name, chamber)
	if err != nil {
		return nil, err
	}
	if official != nil {
		return official, nil
	}

	official = &model.Official{Name: name, Chamber: chamber, State: state}
	if err := e.store.CreateOfficial(ctx, official); err != nil {
		return nil, err
	}
	e.log.Debug("created official",
		zap.String("name", name), zap.String("chamber", string(chamber)))
	return official, nil
}

// recordProvenance archives the raw record and appends a trade_sources row.
// Neither step may fail the ingestion: errors here are logged and dropped.
func (e *Engine) recordProvenance(ctx context.Context, tradeID int64, rec model.Record, defaultSourceURL string) {
	raw, err := json.Marshal(rec)
	if err != nil {
		e.log.Warn("marshal provenance record", zap.Int64("trade_id", tradeID), zap.Error(err))
		return
	}

	if e.archiver.Enabled() {
		key, err := e.archiver.PutRecord(ctx, raw, rec.Source)
		if err != nil {
			e.log.Warn("archive record", zap.Int64("trade_id", tradeID), zap.Error(err))
		} else {
			wrapped, err := json.Marshal(provenancePayload{Local: rec, ArchiveKey: key})
			if err == nil {
				raw = wrapped
			}
		}
	}

	sourceURL := rec.SourceURL
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}

	src := &model.TradeSource{
		TradeID:   tradeID,
		Source:    rec.Source,
		SourceURL: sourceURL,
		RawJSON:   string(raw),
	}
	if err := e.store.CreateTradeSource(ctx, src); err != nil {
		e.log.Warn("record provenance", zap.Int64("trade_id", tradeID), zap.Error(err))
	}
}
