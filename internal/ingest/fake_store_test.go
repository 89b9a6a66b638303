package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
)

// fakeStore is an in-memory Store for engine and runner tests.
type fakeStore struct {
	officials []model.Official
	trades    []model.Trade
	sources   []model.TradeSource
	runs      map[int64]*store.IngestRun
	rules     []model.AlertRule

	nextID int64

	failTradeSource bool
	failCreateTrade bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{runs: make(map[int64]*store.IngestRun)}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) FindOfficial(_ context.Context, name string, chamber model.Chamber) (*model.Official, error) {
	for i := range f.officials {
		if f.officials[i].Name == name && f.officials[i].Chamber == chamber {
			o := f.officials[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateOfficial(_ context.Context, o *model.Official) error {
	o.ID = f.id()
	o.CreatedAt = time.Now().UTC()
	f.officials = append(f.officials, *o)
	return nil
}

func (f *fakeStore) GetOfficial(_ context.Context, id int64) (*model.Official, error) {
	for i := range f.officials {
		if f.officials[i].ID == id {
			o := f.officials[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListOfficials(context.Context, store.OfficialFilter) ([]model.Official, error) {
	return append([]model.Official(nil), f.officials...), nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (f *fakeStore) TradeExists(_ context.Context, officialID int64, tradeDate *time.Time, ticker, issuer string, txType model.TxType) (bool, error) {
	for i := range f.trades {
		t := &f.trades[i]
		if t.OfficialID == officialID && sameDate(t.TradeDate, tradeDate) &&
			t.Ticker == ticker && t.Issuer == issuer && t.TransactionType == txType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTrade(_ context.Context, t *model.Trade) error {
	if f.failCreateTrade {
		return eris.New("create trade failed")
	}
	t.ID = f.id()
	t.CreatedAt = time.Now().UTC()
	f.trades = append(f.trades, *t)
	return nil
}

func (f *fakeStore) GetTrade(_ context.Context, id int64) (*store.TradeRow, error) {
	for i := range f.trades {
		if f.trades[i].ID == id {
			return f.tradeRow(f.trades[i]), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) tradeRow(t model.Trade) *store.TradeRow {
	row := &store.TradeRow{Trade: t}
	for i := range f.officials {
		if f.officials[i].ID == t.OfficialID {
			row.OfficialName = f.officials[i].Name
			row.OfficialChamber = f.officials[i].Chamber
		}
	}
	return row
}

func (f *fakeStore) ListTrades(_ context.Context, filter store.TradeFilter) ([]store.TradeRow, error) {
	var out []store.TradeRow
	for i := range f.trades {
		t := f.trades[i]
		if filter.CreatedAfter != nil && t.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.Ticker != "" && !strings.EqualFold(t.Ticker, filter.Ticker) {
			continue
		}
		out = append(out, *f.tradeRow(t))
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeStore) CreateTradeSource(_ context.Context, s *model.TradeSource) error {
	if f.failTradeSource {
		return eris.New("create trade source failed")
	}
	s.ID = f.id()
	s.RetrievedAt = time.Now().UTC()
	f.sources = append(f.sources, *s)
	return nil
}

func (f *fakeStore) ListTradeSources(_ context.Context, tradeID int64) ([]model.TradeSource, error) {
	var out []model.TradeSource
	for _, s := range f.sources {
		if s.TradeID == tradeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) StartIngestRun(context.Context) (int64, error) {
	id := f.id()
	f.runs[id] = &store.IngestRun{ID: id, Status: store.RunRunning, StartedAt: time.Now().UTC()}
	return id, nil
}

func (f *fakeStore) CompleteIngestRun(_ context.Context, runID int64, fetched, unique, added int) error {
	r := f.runs[runID]
	if r == nil {
		return eris.Errorf("no run %d", runID)
	}
	now := time.Now().UTC()
	r.Status = store.RunComplete
	r.CompletedAt = &now
	r.Fetched, r.Unique, r.Added = fetched, unique, added
	return nil
}

func (f *fakeStore) FailIngestRun(_ context.Context, runID int64, errMsg string) error {
	r := f.runs[runID]
	if r == nil {
		return eris.Errorf("no run %d", runID)
	}
	now := time.Now().UTC()
	r.Status = store.RunFailed
	r.CompletedAt = &now
	r.Error = errMsg
	return nil
}

func (f *fakeStore) ListIngestRuns(context.Context, int) ([]store.IngestRun, error) {
	var out []store.IngestRun
	for _, r := range f.runs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) CreateAlertRule(_ context.Context, r *model.AlertRule) error {
	r.ID = f.id()
	r.CreatedAt = time.Now().UTC()
	f.rules = append(f.rules, *r)
	return nil
}

func (f *fakeStore) ListAlertRules(_ context.Context, activeOnly bool) ([]model.AlertRule, error) {
	var out []model.AlertRule
	for _, r := range f.rules {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) DeleteAlertRule(_ context.Context, id int64) (bool, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }
