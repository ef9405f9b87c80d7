// Package backend opens the storage backend a Config selects and moves data
// between backends.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mesh-intelligence/docket/internal/memdb"
	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/internal/sqlite"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// File extensions of the per-firm data files.
const (
	SQLiteExt   = ".db"
	SnapshotExt = ".jsonl"
)

type options struct {
	logger *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger handed to the backend.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open validates cfg and opens its backend. Each firm gets its own data
// file in DataDir. The memory backend persists only when DataDir is set.
func Open(cfg types.Config, opts ...Option) (types.Backend, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case types.BackendMemory:
		mopts := []memdb.Option{memdb.WithLogger(o.logger)}
		if cfg.DataDir != "" {
			mopts = append(mopts, memdb.WithFile(DataFile(cfg)))
		}
		return memdb.New(mopts...)
	case types.BackendSQLite:
		return sqlite.Open(DataFile(cfg), sqlite.WithLogger(o.logger))
	case types.BackendRemote:
		return remote.New(cfg.RemoteURL, remote.WithLogger(o.logger))
	}
	return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
}

// DataFile returns the file a local backend stores the firm's data in.
func DataFile(cfg types.Config) string {
	dir := cfg.DataDir
	if dir == "" {
		dir = "."
	}
	ext := SQLiteExt
	if cfg.Backend == types.BackendMemory {
		ext = SnapshotExt
	}
	return filepath.Join(dir, cfg.FirmName()+ext)
}

// Migrate copies every collection of src into dst record by record and
// returns the number of values written. Records already in dst under the
// same key are overwritten; other dst records are left alone.
func Migrate(ctx context.Context, src, dst types.Backend) (int, error) {
	cols, err := src.Children(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("listing collections: %w", err)
	}

	n := 0
	for _, col := range cols {
		records, ok := col.Value.(map[string]any)
		if !ok {
			if err := dst.Put(ctx, []string{col.Key}, col.Value); err != nil {
				return n, fmt.Errorf("writing %s: %w", col.Key, err)
			}
			n++
			continue
		}
		for key, v := range records {
			if err := dst.Put(ctx, []string{col.Key, key}, v); err != nil {
				return n, fmt.Errorf("writing %s/%s: %w", col.Key, key, err)
			}
			n++
		}
	}
	return n, nil
}
