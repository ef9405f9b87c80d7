// Package sqlite implements the relational backend on SQLite. Each record
// (a collection/key pair) is one row holding the record as JSON; deeper
// paths are read and written inside that JSON.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/docket/internal/tree"
	"github.com/mesh-intelligence/docket/internal/watch"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Backend implements types.Backend on a SQLite database file.
type Backend struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	hub    *watch.Hub

	wmu    sync.Mutex // serializes writes so notifications follow commit order
	mu     sync.RWMutex
	closed bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the backend logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, opts ...Option) (*Backend, error) {
	b := &Backend{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range append(append([]string(nil), pragmas...), schemaStatements...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", stmt, err)
		}
	}

	b.db = db
	b.hub = watch.NewHub(b.Read, b.logger)
	return b, nil
}

// Path returns the database file path.
func (b *Backend) Path() string { return b.path }

func (b *Backend) isClosed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

// Read implements types.Backend.
func (b *Backend) Read(ctx context.Context, path []string) (any, bool, error) {
	if err := tree.ValidatePath(path); err != nil {
		return nil, false, err
	}
	if b.isClosed() {
		return nil, false, types.ErrBackendClosed
	}
	switch len(path) {
	case 0:
		root, err := b.loadAll(ctx, b.db)
		if err != nil {
			return nil, false, err
		}
		v, ok := tree.Get(root, nil)
		return v, ok, nil
	case 1:
		return b.readCollection(ctx, b.db, path[0])
	}
	v, ok, err := b.readRecord(ctx, b.db, path[0], path[1])
	if err != nil || !ok {
		return nil, false, err
	}
	m := map[string]any{path[1]: v}
	got, ok := tree.Get(m, path[1:])
	return got, ok, nil
}

// Children implements types.Backend.
func (b *Backend) Children(ctx context.Context, path []string) ([]types.Child, error) {
	if len(path) == 1 {
		if err := tree.ValidatePath(path); err != nil {
			return nil, err
		}
		if b.isClosed() {
			return nil, types.ErrBackendClosed
		}
		return b.collectionChildren(ctx, path[0])
	}
	v, ok, err := b.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.Child{}, nil
	}
	m, isMap := v.(map[string]any)
	if !isMap {
		return []types.Child{}, nil
	}
	return tree.Children(m, nil), nil
}

// Put implements types.Backend.
func (b *Backend) Put(ctx context.Context, path []string, value any) error {
	if err := tree.ValidatePath(path); err != nil {
		return err
	}
	v, err := types.Normalize(value)
	if err != nil {
		return err
	}
	if len(path) == 0 && !tree.IsEmpty(v) {
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: root must be an object", types.ErrInvalidValue)
		}
	}
	return b.write(ctx, path, func(tx *sql.Tx) error {
		return b.put(ctx, tx, path, v)
	})
}

// Append implements types.Backend.
func (b *Backend) Append(ctx context.Context, path []string, value any) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	key := id.String()
	if err := b.Put(ctx, append(append([]string(nil), path...), key), value); err != nil {
		return "", err
	}
	return key, nil
}

// Delete implements types.Backend.
func (b *Backend) Delete(ctx context.Context, path []string) error {
	return b.Put(ctx, path, nil)
}

// Watch implements types.Backend.
func (b *Backend) Watch(ctx context.Context, path []string, fn func(types.Snapshot)) (types.Subscription, error) {
	if err := tree.ValidatePath(path); err != nil {
		return nil, err
	}
	if b.isClosed() {
		return nil, types.ErrBackendClosed
	}
	return b.hub.Subscribe(ctx, path, fn), nil
}

// Close ends all subscriptions and closes the database.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.hub.Close()
	b.wmu.Lock()
	defer b.wmu.Unlock()
	return b.db.Close()
}

// write runs fn in a transaction and notifies watchers after commit.
func (b *Backend) write(ctx context.Context, path []string, fn func(tx *sql.Tx) error) error {
	b.wmu.Lock()
	if b.isClosed() {
		b.wmu.Unlock()
		return types.ErrBackendClosed
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		b.wmu.Unlock()
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		b.wmu.Unlock()
		return err
	}
	if err := tx.Commit(); err != nil {
		b.wmu.Unlock()
		return fmt.Errorf("commit: %w", err)
	}
	b.wmu.Unlock()

	b.hub.Notify(path)
	return nil
}

func (b *Backend) put(ctx context.Context, tx *sql.Tx, path []string, v any) error {
	switch len(path) {
	case 0:
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
			return fmt.Errorf("clearing nodes: %w", err)
		}
		m, _ := v.(map[string]any)
		for _, col := range tree.SortedKeys(m) {
			if err := b.putCollection(ctx, tx, col, m[col]); err != nil {
				return err
			}
		}
		return nil
	case 1:
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE collection = ?`, path[0]); err != nil {
			return fmt.Errorf("clearing %s: %w", path[0], err)
		}
		return b.putCollection(ctx, tx, path[0], v)
	case 2:
		if err := b.deleteRow(ctx, tx, path[0], scalarKey); err != nil {
			return err
		}
		if tree.IsEmpty(v) {
			return b.deleteRow(ctx, tx, path[0], path[1])
		}
		return b.upsert(ctx, tx, path[0], path[1], v)
	}

	cur, ok, err := b.readRecord(ctx, tx, path[0], path[1])
	if err != nil {
		return err
	}
	m, isMap := cur.(map[string]any)
	if !ok || !isMap {
		if tree.IsEmpty(v) {
			return nil
		}
		m = map[string]any{}
	}
	m = tree.Set(m, path[2:], v)
	if err := b.deleteRow(ctx, tx, path[0], scalarKey); err != nil {
		return err
	}
	if len(m) == 0 {
		return b.deleteRow(ctx, tx, path[0], path[1])
	}
	return b.upsert(ctx, tx, path[0], path[1], m)
}

// putCollection inserts v as the content of an emptied collection.
func (b *Backend) putCollection(ctx context.Context, tx *sql.Tx, col string, v any) error {
	if tree.IsEmpty(v) {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return b.upsert(ctx, tx, col, scalarKey, v)
	}
	for _, key := range tree.SortedKeys(m) {
		if err := tree.ValidatePath([]string{key}); err != nil {
			return err
		}
		if tree.IsEmpty(m[key]) {
			continue
		}
		if err := b.upsert(ctx, tx, col, key, m[key]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) upsert(ctx context.Context, tx *sql.Tx, col, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidValue, err)
	}
	now := time.Now().UTC().Format(types.TimeLayout)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO nodes (collection, key, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		col, key, string(data), now)
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", col, key, err)
	}
	return nil
}

func (b *Backend) deleteRow(ctx context.Context, tx *sql.Tx, col, key string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE collection = ? AND key = ?`, col, key); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", col, key, err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (b *Backend) readRecord(ctx context.Context, q querier, col, key string) (any, bool, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM nodes WHERE collection = ? AND key = ?`, col, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s/%s: %w", col, key, err)
	}
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false, fmt.Errorf("decoding %s/%s: %w", col, key, err)
	}
	return v, true, nil
}

func (b *Backend) readCollection(ctx context.Context, q querier, col string) (any, bool, error) {
	rows, err := q.QueryContext(ctx, `SELECT key, data FROM nodes WHERE collection = ? ORDER BY key`, col)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", col, err)
	}
	defer rows.Close()

	out := map[string]any{}
	var scalar any
	hasScalar := false
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, false, fmt.Errorf("scanning %s: %w", col, err)
		}
		var v any
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			b.logger.Warn("skipping undecodable row", "collection", col, "key", key, "err", err)
			continue
		}
		if key == scalarKey {
			scalar, hasScalar = v, true
			continue
		}
		out[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(out) > 0 {
		return out, true, nil
	}
	if hasScalar {
		return scalar, true, nil
	}
	return nil, false, nil
}

func (b *Backend) collectionChildren(ctx context.Context, col string) ([]types.Child, error) {
	v, ok, err := b.readCollection(ctx, b.db, col)
	if err != nil {
		return nil, err
	}
	m, isMap := v.(map[string]any)
	if !ok || !isMap {
		return []types.Child{}, nil
	}
	return tree.Children(m, nil), nil
}

func (b *Backend) loadAll(ctx context.Context, q querier) (map[string]any, error) {
	rows, err := q.QueryContext(ctx, `SELECT DISTINCT collection FROM nodes ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return nil, err
		}
		cols = append(cols, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	root := map[string]any{}
	for _, c := range cols {
		v, ok, err := b.readCollection(ctx, q, c)
		if err != nil {
			return nil, err
		}
		if ok {
			root[c] = v
		}
	}
	return root, nil
}

var _ types.Backend = (*Backend)(nil)
