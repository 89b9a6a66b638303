package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/openfiling/disclosure-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool Pool
}

// NewPostgres connects to the given database URL.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse database url")
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: connect")
	}
	return &Postgres{pool: pool}, nil
}

// NewWithPool wraps an existing pool; used by tests.
func NewWithPool(pool Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the underlying pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

const officialColumns = "id, name, chamber, role, state, committees, created_at"

func scanOfficial(row pgx.Row) (*model.Official, error) {
	var o model.Official
	err := row.Scan(&o.ID, &o.Name, &o.Chamber, &o.Role, &o.State, &o.Committees, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// FindOfficial looks up an official by (name, chamber). Returns (nil, nil)
// when no row matches.
func (p *Postgres) FindOfficial(ctx context.Context, name string, chamber model.Chamber) (*model.Official, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+officialColumns+` FROM officials WHERE name = $1 AND chamber = $2 LIMIT 1`,
		name, chamber,
	)
	o, err := scanOfficial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: find official %q", name)
	}
	return o, nil
}

// CreateOfficial inserts a new official and fills in its ID and timestamp.
func (p *Postgres) CreateOfficial(ctx context.Context, o *model.Official) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO officials (name, chamber, role, state, committees)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		o.Name, o.Chamber, o.Role, o.State, o.Committees,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create official %q", o.Name)
	}
	return nil
}

// GetOfficial fetches an official by ID. Returns (nil, nil) when absent.
func (p *Postgres) GetOfficial(ctx context.Context, id int64) (*model.Official, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+officialColumns+` FROM officials WHERE id = $1`, id,
	)
	o, err := scanOfficial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: get official %d", id)
	}
	return o, nil
}

// ListOfficials returns officials matching the filter, ordered by name.
func (p *Postgres) ListOfficials(ctx context.Context, filter OfficialFilter) ([]model.Official, error) {
	sql := `SELECT ` + officialColumns + ` FROM officials`
	var args []any
	if filter.Chamber != "" {
		args = append(args, filter.Chamber)
		sql += fmt.Sprintf(" WHERE chamber = $%d", len(args))
	}
	sql += " ORDER BY name"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list officials")
	}
	defer rows.Close()

	var out []model.Official
	for rows.Next() {
		var o model.Official
		if err := rows.Scan(&o.ID, &o.Name, &o.Chamber, &o.Role, &o.State, &o.Committees, &o.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan official")
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// TradeExists reports whether a trade with the given natural key already
// exists. Null trade dates compare equal (IS NOT DISTINCT FROM).
func (p *Postgres) TradeExists(ctx context.Context, officialID int64, tradeDate *time.Time, ticker, issuer string, txType model.TxType) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM trades
			WHERE official_id = $1
			  AND trade_date IS NOT DISTINCT FROM $2
			  AND ticker = $3
			  AND issuer = $4
			  AND transaction_type = $5
		)`,
		officialID, tradeDate, ticker, issuer, txType,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "store: trade exists for official %d", officialID)
	}
	return exists, nil
}

// CreateTrade inserts a new trade and fills in its ID and timestamp.
func (p *Postgres) CreateTrade(ctx context.Context, t *model.Trade) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO trades (official_id, filing_url, transaction_type, owner,
		                     trade_date, reported_date, ticker, issuer, amount_min, amount_max)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at`,
		t.OfficialID, t.FilingURL, t.TransactionType, t.Owner,
		t.TradeDate, t.ReportedDate, t.Ticker, t.Issuer, t.AmountMin, t.AmountMax,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create trade for official %d", t.OfficialID)
	}
	return nil
}

const tradeRowColumns = `t.id, t.official_id, t.filing_url, t.transaction_type, t.owner,
	t.trade_date, t.reported_date, t.ticker, t.issuer, t.amount_min, t.amount_max, t.created_at,
	o.name, o.chamber`

func scanTradeRow(row pgx.Row) (*TradeRow, error) {
	var tr TradeRow
	err := row.Scan(
		&tr.ID, &tr.OfficialID, &tr.FilingURL, &tr.TransactionType, &tr.Owner,
		&tr.TradeDate, &tr.ReportedDate, &tr.Ticker, &tr.Issuer, &tr.AmountMin, &tr.AmountMax, &tr.CreatedAt,
		&tr.OfficialName, &tr.OfficialChamber,
	)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

// GetTrade fetches one trade joined with its official. Returns (nil, nil)
// when absent.
func (p *Postgres) GetTrade(ctx context.Context, id int64) (*TradeRow, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+tradeRowColumns+`
		 FROM trades t JOIN officials o ON o.id = t.official_id
		 WHERE t.id = $1`, id,
	)
	tr, err := scanTradeRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "store: get trade %d", id)
	}
	return tr, nil
}

// ListTrades returns trades matching the filter, newest insert first.
func (p *Postgres) ListTrades(ctx context.Context, filter TradeFilter) ([]TradeRow, error) {
	sql := `SELECT ` + tradeRowColumns + `
		 FROM trades t JOIN officials o ON o.id = t.official_id`

	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.OfficialID != 0 {
		add("t.official_id = $%d", filter.OfficialID)
	}
	if filter.Ticker != "" {
		add("t.ticker = $%d", strings.ToUpper(filter.Ticker))
	}
	if filter.TxType != "" {
		add("t.transaction_type = $%d", filter.TxType)
	}
	if filter.Chamber != "" {
		add("o.chamber = $%d", filter.Chamber)
	}
	if filter.CreatedAfter != nil {
		add("t.created_at >= $%d", *filter.CreatedAfter)
	}
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}

	sql += " ORDER BY t.created_at DESC, t.id DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list trades")
	}
	defer rows.Close()

	var out []TradeRow
	for rows.Next() {
		var tr TradeRow
		if err := rows.Scan(
			&tr.ID, &tr.OfficialID, &tr.FilingURL, &tr.TransactionType, &tr.Owner,
			&tr.TradeDate, &tr.ReportedDate, &tr.Ticker, &tr.Issuer, &tr.AmountMin, &tr.AmountMax, &tr.CreatedAt,
			&tr.OfficialName, &tr.OfficialChamber,
		); err != nil {
			return nil, eris.Wrap(err, "store: scan trade")
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// CreateTradeSource appends a provenance row for a trade.
func (p *Postgres) CreateTradeSource(ctx context.Context, s *model.TradeSource) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO trade_sources (trade_id, source, source_url, raw_json)
		 VALUES ($1, $2, $3, $4) RETURNING id, retrieved_at`,
		s.TradeID, s.Source, s.SourceURL, s.RawJSON,
	).Scan(&s.ID, &s.RetrievedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create trade source for trade %d", s.TradeID)
	}
	return nil
}

// ListTradeSources returns the provenance rows for one trade, oldest first.
func (p *Postgres) ListTradeSources(ctx context.Context, tradeID int64) ([]model.TradeSource, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, trade_id, source, source_url, raw_json, retrieved_at
		 FROM trade_sources WHERE trade_id = $1 ORDER BY id`,
		tradeID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list trade sources for trade %d", tradeID)
	}
	defer rows.Close()

	var out []model.TradeSource
	for rows.Next() {
		var s model.TradeSource
		if err := rows.Scan(&s.ID, &s.TradeID, &s.Source, &s.SourceURL, &s.RawJSON, &s.RetrievedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan trade source")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// StartIngestRun records the beginning of an ingestion run.
func (p *Postgres) StartIngestRun(ctx context.Context) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO ingest_runs (status) VALUES ($1) RETURNING id`,
		RunRunning,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrap(err, "store: start ingest run")
	}
	return id, nil
}

// CompleteIngestRun marks a run as complete with its aggregate counts.
func (p *Postgres) CompleteIngestRun(ctx context.Context, runID int64, fetched, unique, added int) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE ingest_runs
		 SET status = $1, completed_at = now(), fetched = $2, deduped = $3, added = $4
		 WHERE id = $5`,
		RunComplete, fetched, unique, added, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: complete ingest run %d", runID)
	}
	return nil
}

// FailIngestRun marks a run as failed with an error message.
func (p *Postgres) FailIngestRun(ctx context.Context, runID int64, errMsg string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE ingest_runs SET status = $1, completed_at = now(), error = $2 WHERE id = $3`,
		RunFailed, errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: fail ingest run %d", runID)
	}
	return nil
}

// ListIngestRuns returns recent runs, newest first.
func (p *Postgres) ListIngestRuns(ctx context.Context, limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at, fetched, deduped, added, error
		 FROM ingest_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list ingest runs")
	}
	defer rows.Close()

	var out []IngestRun
	for rows.Next() {
		var r IngestRun
		var errStr *string
		if err := rows.Scan(&r.ID, &r.Status, &r.StartedAt, &r.CompletedAt, &r.Fetched, &r.Unique, &r.Added, &errStr); err != nil {
			return nil, eris.Wrap(err, "store: scan ingest run")
		}
		if errStr != nil {
			r.Error = *errStr
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateAlertRule inserts a new alert rule and fills in its ID and timestamp.
func (p *Postgres) CreateAlertRule(ctx context.Context, r *model.AlertRule) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO alert_rules (name, email, tickers, chambers, min_amount, webhook_url, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		r.Name, r.Email, r.Tickers, r.Chambers, r.MinAmount, r.WebhookURL, r.Active,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create alert rule %q", r.Name)
	}
	return nil
}

// ListAlertRules returns alert rules, optionally restricted to active ones.
func (p *Postgres) ListAlertRules(ctx context.Context, activeOnly bool) ([]model.AlertRule, error) {
	sql := `SELECT id, name, email, tickers, chambers, min_amount, webhook_url, active, created_at
		 FROM alert_rules`
	if activeOnly {
		sql += ` WHERE active`
	}
	sql += ` ORDER BY id`

	rows, err := p.pool.Query(ctx, sql)
	if err != nil {
		return nil, eris.Wrap(err, "store: list alert rules")
	}
	defer rows.Close()

	var out []model.AlertRule
	for rows.Next() {
		var r model.AlertRule
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Tickers, &r.Chambers, &r.MinAmount, &r.WebhookURL, &r.Active, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan alert rule")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteAlertRule removes a rule; reports whether a row was deleted.
func (p *Postgres) DeleteAlertRule(ctx context.Context, id int64) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM alert_rules WHERE id = $1`, id)
	if err != nil {
		return false, eris.Wrapf(err, "store: delete alert rule %d", id)
	}
	return tag.RowsAffected() > 0, nil
}
