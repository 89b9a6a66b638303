package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/model"
)

func init() {
	// Replace global logger with a no-op to avoid noise in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithPool(mock), mock
}

var officialCols = []string{"id", "name", "chamber", "role", "state", "committees", "created_at"}

func TestFindOfficial_Found(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, chamber, role, state, committees, created_at FROM officials").
		WithArgs("Jane Doe", model.ChamberHouse).
		WillReturnRows(pgxmock.NewRows(officialCols).
			AddRow(int64(7), "Jane Doe", model.ChamberHouse, "", "NC", "", time.Now()))

	o, err := st.FindOfficial(context.Background(), "Jane Doe", model.ChamberHouse)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, "Jane Doe", o.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOfficial_Absent(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, chamber, role, state, committees, created_at FROM officials").
		WithArgs("Nobody", model.ChamberSenate).
		WillReturnRows(pgxmock.NewRows(officialCols))

	o, err := st.FindOfficial(context.Background(), "Nobody", model.ChamberSenate)
	require.NoError(t, err)
	assert.Nil(t, o)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOfficial(t *testing.T) {
	st, mock := newMockStore(t)

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO officials").
		WithArgs("Jane Doe", model.ChamberHouse, "", "NC", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

	o := &model.Official{Name: "Jane Doe", Chamber: model.ChamberHouse, State: "NC"}
	require.NoError(t, st.CreateOfficial(context.Background(), o))
	assert.Equal(t, int64(3), o.ID)
	assert.Equal(t, created, o.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeExists(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(7), (*time.Time)(nil), "AAPL", "Apple Inc", model.TxBuy).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := st.TradeExists(context.Background(), 7, nil, "AAPL", "Apple Inc", model.TxBuy)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTrade(t *testing.T) {
	st, mock := newMockStore(t)

	created := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO trades").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))

	amt := decimal.NewFromInt(15000)
	trade := &model.Trade{
		OfficialID:      7,
		TransactionType: model.TxBuy,
		Owner:           model.OwnerSpouse,
		Ticker:          "AAPL",
		Issuer:          "Apple Inc",
		AmountMax:       &amt,
	}
	require.NoError(t, st.CreateTrade(context.Background(), trade))
	assert.Equal(t, int64(11), trade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var tradeRowCols = []string{
	"id", "official_id", "filing_url", "transaction_type", "owner",
	"trade_date", "reported_date", "ticker", "issuer", "amount_min", "amount_max", "created_at",
	"name", "chamber",
}

func mockTradeRow(id int64) []any {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	lo := decimal.NewFromInt(1001)
	hi := decimal.NewFromInt(15000)
	return []any{
		id, int64(7), "https://example.com/ptr.pdf", model.TxBuy, model.OwnerSpouse,
		&d, (*time.Time)(nil), "AAPL", "Apple Inc", &lo, &hi, time.Now().UTC(),
		"Jane Doe", model.ChamberHouse,
	}
}

func TestGetTrade(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("FROM trades t JOIN officials o").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows(tradeRowCols).AddRow(mockTradeRow(11)...))

	tr, err := st.GetTrade(context.Background(), 11)
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, int64(11), tr.ID)
	assert.Equal(t, "Jane Doe", tr.OfficialName)
	assert.Equal(t, model.ChamberHouse, tr.OfficialChamber)
	require.NotNil(t, tr.AmountMax)
	assert.Equal(t, "15000", tr.AmountMax.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTrade_Absent(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("FROM trades t JOIN officials o").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(tradeRowCols))

	tr, err := st.GetTrade(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, tr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTrades_Filters(t *testing.T) {
	st, mock := newMockStore(t)

	// Ticker filter is upper-cased; default limit applies.
	mock.ExpectQuery("FROM trades t JOIN officials o").
		WithArgs("AAPL", model.ChamberHouse, 100).
		WillReturnRows(pgxmock.NewRows(tradeRowCols).AddRow(mockTradeRow(11)...))

	rows, err := st.ListTrades(context.Background(), TradeFilter{
		Ticker:  "aapl",
		Chamber: model.ChamberHouse,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AAPL", rows[0].Ticker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTradeSource(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO trade_sources").
		WithArgs(int64(11), "us_house_csv", "https://example.com/house.csv", `{"a":1}`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "retrieved_at"}).AddRow(int64(1), time.Now().UTC()))

	src := &model.TradeSource{
		TradeID:   11,
		Source:    "us_house_csv",
		SourceURL: "https://example.com/house.csv",
		RawJSON:   `{"a":1}`,
	}
	require.NoError(t, st.CreateTradeSource(context.Background(), src))
	assert.Equal(t, int64(1), src.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestRunLifecycle(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO ingest_runs").
		WithArgs(RunRunning).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectExec("UPDATE ingest_runs").
		WithArgs(RunComplete, 10, 8, 3, int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	id, err := st.StartIngestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	require.NoError(t, st.CompleteIngestRun(context.Background(), id, 10, 8, 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailIngestRun(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("UPDATE ingest_runs").
		WithArgs(RunFailed, "boom", int64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.FailIngestRun(context.Background(), 5, "boom"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAlertRule(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM alert_rules").
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM alert_rules").
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := st.DeleteAlertRule(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = st.DeleteAlertRule(context.Background(), 9)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
