// Package archive writes raw disclosure payloads to S3-compatible object
// storage for provenance. Archival is best-effort: callers log failures and
// continue.
package archive

import (
	"context"
)

// Archiver stores a raw record payload and returns the object key it was
// written under.
type Archiver interface {
	// Enabled reports whether archival is configured. When false, PutRecord
	// is never called.
	Enabled() bool
	// PutRecord writes the payload and returns the generated object key.
	// The hint becomes part of the key, typically the feed source name.
	PutRecord(ctx context.Context, payload []byte, hint string) (string, error)
}

// Disabled is the no-op Archiver used when no object store is configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) PutRecord(context.Context, []byte, string) (string, error) {
	return "", nil
}
