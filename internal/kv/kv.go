// Package kv provides the process-wide key-value string store the
// dashboard persists its state into. Backends are interchangeable: a
// local file per key, a SQLite table, a GCS object per key, or plain
// memory for tests.
package kv

import (
	"context"
)

// Store is a flat string-to-string store. Get reports whether the key
// existed; a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}
