// Package connector fetches raw disclosure records from the configured feeds
// and maps each feed's column vocabulary onto the canonical record shape.
package connector

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/openfiling/disclosure-cli/internal/fetcher"
	"github.com/openfiling/disclosure-cli/internal/model"
)

// Feed is one external disclosure source. Fetch performs a single GET against
// the feed URL and shapes the rows; it never persists anything. Network and
// parse errors propagate — the caller decides whether the run continues.
type Feed interface {
	// Name returns the stable source identifier recorded in provenance rows.
	Name() string

	// SourceURL returns the configured feed URL ("" when unconfigured).
	SourceURL() string

	// Fetch downloads and maps up to limit records (0 = unlimited).
	Fetch(ctx context.Context, limit int) ([]model.Record, error)
}

// row wraps one CSV row with the feed's header index for named lookups.
type row struct {
	fields []string
	index  map[string]int
}

// get returns the named column's value, "" when the column is absent.
func (r row) get(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// first returns the first non-empty value among the named columns.
func (r row) first(names ...string) string {
	for _, n := range names {
		if v := r.get(n); v != "" {
			return v
		}
	}
	return ""
}

// fetchRows downloads the feed CSV and returns its rows, truncated to limit
// before any mapping happens.
func fetchRows(ctx context.Context, f fetcher.Fetcher, url string, limit int) ([]row, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return nil, eris.Wrapf(err, "connector: fetch %s", url)
	}
	defer body.Close() //nolint:errcheck

	table, err := fetcher.ReadTable(ctx, body)
	if err != nil {
		return nil, eris.Wrapf(err, "connector: parse %s", url)
	}

	records := table.Rows
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	idx := table.Index()
	rows := make([]row, len(records))
	for i, fields := range records {
		rows[i] = row{fields: fields, index: idx}
	}
	return rows, nil
}
