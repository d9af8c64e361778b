package source

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"eventease/backend/internal/domain"
)

// Query is the shared search surface every external event source accepts.
// Fields are optional; adapters use what their provider supports.
type Query struct {
	Keyword  string
	City     string
	Category string
}

// EventSource normalizes one third-party API into canonical events.
// FetchEvents fails open: any transport or parse failure is logged and
// yields an empty slice, never an error.
type EventSource interface {
	Name() string
	Enabled() bool
	FetchEvents(ctx context.Context, q Query) []domain.Event
}

// ExternalEventID derives a stable document ID for an externally sourced
// event from its source link. The same link always maps to the same ID, so
// refreshes upsert instead of appending.
func ExternalEventID(prefix, link string) string {
	sum := md5.Sum([]byte(link))
	return prefix + hex.EncodeToString(sum[:])
}
