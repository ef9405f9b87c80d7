// Package memdb implements an in-memory document tree backend. With a file
// configured, changes mark the tree dirty and a single background writer
// persists it as a JSONL snapshot. Close flushes the last change.
package memdb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/docket/internal/tree"
	"github.com/mesh-intelligence/docket/internal/watch"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Backend is a types.Backend holding the whole tree in memory.
type Backend struct {
	file   string
	logger *slog.Logger
	hub    *watch.Hub

	mu     sync.RWMutex
	root   map[string]any
	closed bool
	dirty  bool

	signal chan struct{} // buffered, size 1
	stop   chan struct{}
	done   chan struct{}
}

// Option configures a Backend.
type Option func(*Backend)

// WithFile persists the tree to path.
func WithFile(path string) Option {
	return func(b *Backend) { b.file = path }
}

// WithLogger sets the logger for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a backend, loading the snapshot file when one is set.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{root: map[string]any{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	if b.file != "" {
		root, skipped, err := readJSONL(b.file)
		if err != nil {
			return nil, err
		}
		if skipped > 0 {
			b.logger.Warn("skipped malformed snapshot lines", "file", b.file, "count", skipped)
		}
		b.root = root
	}
	b.hub = watch.NewHub(b.Read, b.logger)
	if b.file != "" {
		b.signal = make(chan struct{}, 1)
		b.stop = make(chan struct{})
		b.done = make(chan struct{})
		go b.writer()
	}
	return b, nil
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
	if len(path) == 0 && v != nil {
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("%w: root must be an object", types.ErrInvalidValue)
		}
	}
	return b.mutate(ctx, path, func() {
		b.root = tree.Set(b.root, path, v)
	})
}

// Read implements types.Backend.
func (b *Backend) Read(ctx context.Context, path []string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := tree.ValidatePath(path); err != nil {
		return nil, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, false, types.ErrBackendClosed
	}
	v, ok := tree.Get(b.root, path)
	if !ok {
		return nil, false, nil
	}
	return tree.Clone(v), true, nil
}

// Children implements types.Backend.
func (b *Backend) Children(ctx context.Context, path []string) ([]types.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tree.ValidatePath(path); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, types.ErrBackendClosed
	}
	return tree.Children(b.root, path), nil
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
	if err := tree.ValidatePath(path); err != nil {
		return err
	}
	return b.mutate(ctx, path, func() {
		tree.Delete(b.root, path)
	})
}

// Watch implements types.Backend.
func (b *Backend) Watch(ctx context.Context, path []string, fn func(types.Snapshot)) (types.Subscription, error) {
	if err := tree.ValidatePath(path); err != nil {
		return nil, err
	}
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, types.ErrBackendClosed
	}
	return b.hub.Subscribe(ctx, path, fn), nil
}

// Close ends all subscriptions and writes any unsaved change.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.hub.Close()
	if b.file != "" {
		close(b.stop)
		<-b.done
	}
	return nil
}

// mutate applies fn under the write lock, marks the tree dirty and
// notifies watchers of path.
func (b *Backend) mutate(ctx context.Context, path []string, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return types.ErrBackendClosed
	}
	fn()
	if b.file != "" {
		b.dirty = true
		select {
		case b.signal <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()

	b.hub.Notify(path)
	return nil
}

// writer persists the tree each time it is signalled, coalescing changes
// made while a write is in progress, and flushes once more on stop.
func (b *Backend) writer() {
	defer close(b.done)
	for {
		select {
		case <-b.signal:
			b.flush()
		case <-b.stop:
			b.flush()
			return
		}
	}
}

// flush writes a snapshot if the tree changed since the last write.
func (b *Backend) flush() {
	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return
	}
	b.dirty = false
	snapshot := flatten(tree.Clone(b.root).(map[string]any))
	b.mu.Unlock()

	if err := writeJSONL(b.file, snapshot); err != nil {
		b.logger.Error("snapshot write failed", "file", b.file, "err", err)
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
	}
}

var _ types.Backend = (*Backend)(nil)
