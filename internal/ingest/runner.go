package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/connector"
	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// AlertEvaluator is notified of trades added by a run. Implemented by
// alert.Notifier.
type AlertEvaluator interface {
	EvaluateRun(ctx context.Context, trades []store.TradeRow)
}

// RunSummary reports the outcome of one ingestion run.
type RunSummary struct {
	RunID      int64 `json:"run_id"`
	Fetched    int   `json:"fetched"`
	Unique     int   `json:"unique"`
	Added      int   `json:"added"`
	FeedErrors int   `json:"feed_errors"`
}

// Runner drives the full pipeline: fetch every feed, dedupe, persist, log the
// run, and evaluate alerts for the trades that were added.
type Runner struct {
	feeds    []connector.Feed
	engine   *Engine
	store    store.Store
	notifier AlertEvaluator
	log      *zap.Logger
}

// NewRunner builds a Runner. The notifier may be nil.
func NewRunner(feeds []connector.Feed, engine *Engine, st store.Store, notifier AlertEvaluator) *Runner {
	return &Runner{
		feeds:    feeds,
		engine:   engine,
		store:    st,
		notifier: notifier,
		log:      zap.L().With(zap.String("component", "ingest.runner")),
	}
}

// Run executes one ingestion run. A feed that fails to fetch is logged and
// excluded from the batch; the run itself fails only on store errors. limit
// caps the rows taken from each feed (0 = no cap).
func (r *Runner) Run(ctx context.Context, limit int) (*RunSummary, error) {
	runID, err := r.store.StartIngestRun(ctx)
	if err != nil {
		return nil, err
	}
	summary := &RunSummary{RunID: runID}

	var batch []model.Record
	for _, feed := range r.feeds {
		records, err := feed.Fetch(ctx, limit)
		if err != nil {
			summary.FeedErrors++
			r.log.Error("feed fetch failed",
				zap.String("feed", feed.Name()), zap.Error(err))
			continue
		}
		r.log.Info("feed fetched",
			zap.String("feed", feed.Name()), zap.Int("records", len(records)))
		batch = append(batch, records...)
	}
	summary.Fetched = len(batch)

	unique := connector.Dedupe(batch)
	summary.Unique = len(unique)

	addedRows, err := r.engine.Persist(ctx, unique, "")
	summary.Added = len(addedRows)
	if err != nil {
		if ferr := r.store.FailIngestRun(ctx, runID, err.Error()); ferr != nil {
			r.log.Error("record run failure", zap.Int64("run_id", runID), zap.Error(ferr))
		}
		return summary, err
	}

	if err := r.store.CompleteIngestRun(ctx, runID, summary.Fetched, summary.Unique, summary.Added); err != nil {
		r.log.Error("record run completion", zap.Int64("run_id", runID), zap.Error(err))
	}

	r.log.Info("ingestion run complete",
		zap.Int64("run_id", runID),
		zap.Int("fetched", summary.Fetched),
		zap.Int("unique", summary.Unique),
		zap.Int("added", summary.Added),
		zap.Int("feed_errors", summary.FeedErrors))

	// Alert on exactly the rows this run inserted; no re-query.
	if r.notifier != nil && len(addedRows) > 0 {
		r.notifier.EvaluateRun(ctx, addedRows)
	}

	return summary, nil
}
