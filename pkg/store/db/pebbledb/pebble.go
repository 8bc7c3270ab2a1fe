// Package pebbledb is the local ordered key-value backend.
package pebbledb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/PeterCxy/itte/pkg/logger"
	"github.com/PeterCxy/itte/pkg/store/db"
	"github.com/PeterCxy/itte/pkg/store/keys"
)

const backendName = "pebble"

// Backend stores comments in a single pebble database.
type Backend struct {
	mu   sync.RWMutex
	db   *pebble.DB
	path string
}

// Open opens or creates the store under <dir>/store.
func Open(dir string) (*Backend, error) {
	path := filepath.Join(dir, "store")
	pdb, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	logger.Info("pebble_opened", "path", path)
	return &Backend{db: pdb, path: path}, nil
}

// OpenMemory opens a store on an in-memory filesystem. Nothing survives
// Close.
func OpenMemory() (*Backend, error) {
	pdb, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, fmt.Errorf("open in-memory pebble: %w", err)
	}
	return &Backend{db: pdb, path: ":memory:"}, nil
}

func (b *Backend) Name() string { return backendName }

// Path is the on-disk location, or ":memory:".
func (b *Backend) Path() string { return b.path }

func (b *Backend) handle() (*pebble.DB, error) {
	if b.db == nil {
		return nil, db.ErrClosed
	}
	return b.db, nil
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	defer db.ObserveOp(backendName, "get", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	pdb, err := b.handle()
	if err != nil {
		return nil, err
	}
	v, closer, err := pdb.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, db.ErrNotFound
		}
		logger.Error("pebble_get_failed", "key", key, "error", err)
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()
	return append([]byte(nil), v...), nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	defer db.ObserveOp(backendName, "put", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	pdb, err := b.handle()
	if err != nil {
		return err
	}
	if err := pdb.Set([]byte(key), value, pebble.Sync); err != nil {
		logger.Error("pebble_put_failed", "key", key, "error", err)
		return fmt.Errorf("pebble put: %w", err)
	}
	return nil
}

func (b *Backend) ListPrefix(ctx context.Context, prefix string, limit int, cursor string) (db.ListResult, error) {
	defer db.ObserveOp(backendName, "list", time.Now())
	if err := db.ValidateLimit(limit); err != nil {
		return db.ListResult{}, err
	}
	after, err := db.ResumeAfter(prefix, cursor)
	if err != nil {
		return db.ListResult{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	pdb, err := b.handle()
	if err != nil {
		return db.ListResult{}, err
	}

	lower := []byte(prefix)
	iter, err := pdb.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: keys.NextPrefix(lower),
	})
	if err != nil {
		return db.ListResult{}, fmt.Errorf("pebble iter: %w", err)
	}
	defer iter.Close()

	var valid bool
	if after != "" {
		valid = iter.SeekGE([]byte(after))
		if valid && bytes.Equal(iter.Key(), []byte(after)) {
			valid = iter.Next()
		}
	} else {
		valid = iter.First()
	}

	probed := make([]string, 0, limit+1)
	for ; valid && len(probed) <= limit; valid = iter.Next() {
		if err := ctx.Err(); err != nil {
			return db.ListResult{}, err
		}
		probed = append(probed, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return db.ListResult{}, fmt.Errorf("pebble iterate: %w", err)
	}
	return db.Page(probed, limit), nil
}

// Maintain flushes memtables and compacts the comment keyspace.
func (b *Backend) Maintain(ctx context.Context) error {
	defer db.ObserveOp(backendName, "maintain", time.Now())
	b.mu.RLock()
	defer b.mu.RUnlock()
	pdb, err := b.handle()
	if err != nil {
		return err
	}
	if err := pdb.Flush(); err != nil {
		return fmt.Errorf("pebble flush: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	start := []byte(keys.CommentTag + keys.Delimiter)
	if err := pdb.Compact(start, keys.NextPrefix(start), true); err != nil {
		return fmt.Errorf("pebble compact: %w", err)
	}
	return nil
}

// Ready reports whether the database is open.
func (b *Backend) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.db != nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	if err != nil {
		return fmt.Errorf("pebble close: %w", err)
	}
	return nil
}
