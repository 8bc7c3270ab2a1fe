// Package db defines the ordered key-value contract the thread store runs on.
package db

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// ErrClosed is returned by operations on a closed backend.
var ErrClosed = errors.New("backend closed")

// ListResult is one page of a prefix scan. Keys are ascending. Cursor is the
// opaque native token to resume after the last key and is empty when
// Complete.
type ListResult struct {
	Keys     []string
	Complete bool
	Cursor   string
}

// Backend is an ordered key-value store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// ListPrefix returns up to limit keys starting with prefix, resuming
	// strictly after the key encoded in cursor when non-empty.
	ListPrefix(ctx context.Context, prefix string, limit int, cursor string) (ListResult, error)
	Close() error
	// Name identifies the backend kind in logs and metrics.
	Name() string
}

// Maintainer is implemented by backends with periodic housekeeping.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
