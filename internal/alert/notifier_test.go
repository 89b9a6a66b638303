package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type staticRules []model.AlertRule

func (r staticRules) ListAlertRules(_ context.Context, activeOnly bool) ([]model.AlertRule, error) {
	return r, nil
}

func tradeRow(ticker string, chamber model.Chamber, amountMax int64) store.TradeRow {
	row := store.TradeRow{
		Trade:           model.Trade{ID: 1, Ticker: ticker, TransactionType: model.TxBuy},
		OfficialName:    "Jane Doe",
		OfficialChamber: chamber,
	}
	if amountMax > 0 {
		v := decimal.NewFromInt(amountMax)
		row.AmountMax = &v
	}
	return row
}

func TestMatches_EmptyListsMatchEverything(t *testing.T) {
	rule := model.AlertRule{}
	assert.True(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 0)))
	assert.True(t, Matches(rule, tradeRow("", model.ChamberSenate, 0)))
}

func TestMatches_TickerList(t *testing.T) {
	rule := model.AlertRule{Tickers: "AAPL; msft"}
	assert.True(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 0)))
	assert.True(t, Matches(rule, tradeRow("MSFT", model.ChamberHouse, 0)))
	assert.False(t, Matches(rule, tradeRow("TSLA", model.ChamberHouse, 0)))
}

func TestMatches_ChamberList(t *testing.T) {
	rule := model.AlertRule{Chambers: "senate"}
	assert.True(t, Matches(rule, tradeRow("AAPL", model.ChamberSenate, 0)))
	assert.False(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 0)))
}

func TestMatches_MinAmount(t *testing.T) {
	min := decimal.NewFromInt(50000)
	rule := model.AlertRule{MinAmount: &min}

	assert.True(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 100000)))
	assert.False(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 15000)))
	// No amount information at all cannot satisfy a minimum.
	assert.False(t, Matches(rule, tradeRow("AAPL", model.ChamberHouse, 0)))
}

func TestMatches_MinAmountFallsBackToLowerBound(t *testing.T) {
	min := decimal.NewFromInt(1000)
	rule := model.AlertRule{MinAmount: &min}

	row := tradeRow("AAPL", model.ChamberHouse, 0)
	lo := decimal.NewFromInt(5000)
	row.AmountMin = &lo
	assert.True(t, Matches(rule, row))
}

func TestEvaluateRun_DeliversWebhook(t *testing.T) {
	var mu sync.Mutex
	var bodies [][]byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
	}))
	defer srv.Close()

	rules := staticRules{{
		ID:         1,
		Name:       "apple watch",
		Tickers:    "AAPL",
		WebhookURL: srv.URL,
		Active:     true,
	}}
	n := NewNotifier(rules, srv.Client())

	n.EvaluateRun(context.Background(), []store.TradeRow{
		tradeRow("AAPL", model.ChamberHouse, 15000),
		tradeRow("TSLA", model.ChamberHouse, 15000),
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)

	var payload struct {
		RuleID   int64 `json:"rule_id"`
		RuleName string
		Trade    store.TradeRow `json:"trade"`
	}
	require.NoError(t, json.Unmarshal(bodies[0], &payload))
	assert.Equal(t, int64(1), payload.RuleID)
	assert.Equal(t, "AAPL", payload.Trade.Ticker)
}

func TestEvaluateRun_DeliveryFailureSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rules := staticRules{{ID: 1, Name: "all", WebhookURL: srv.URL, Active: true}}
	n := NewNotifier(rules, srv.Client())

	// Must not panic or propagate.
	n.EvaluateRun(context.Background(), []store.TradeRow{tradeRow("AAPL", model.ChamberHouse, 0)})
}

func TestEvaluateRun_NoWebhookURL(t *testing.T) {
	rules := staticRules{{ID: 1, Name: "email only", Email: "a@example.com", Active: true}}
	n := NewNotifier(rules, nil)

	n.EvaluateRun(context.Background(), []store.TradeRow{tradeRow("AAPL", model.ChamberHouse, 0)})
}
