// Package store is the data-access shim every caller uses instead of a
// backend's native API. It addresses records by collection and natural
// key, encodes keys on the way in and decodes them on the way out, and
// never lets a failure escape: writes report a Result, reads return nil
// or an empty slice.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mesh-intelligence/docket/internal/tree"
	"github.com/mesh-intelligence/docket/pkg/keys"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Result reports the outcome of a mutating call. Key is set by Push.
type Result struct {
	Success bool
	Key     string
	Err     error
}

func succeeded(key string) Result { return Result{Success: true, Key: key} }

func failed(err error) Result { return Result{Err: err} }

// Store wraps a Backend with the shim operations.
type Store struct {
	backend types.Backend
	codec   keys.Codec
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the key codec. The default is keys.Legacy.
func WithCodec(c keys.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics enables operation counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates a Store over b.
func New(b types.Backend, opts ...Option) *Store {
	s := &Store{backend: b, codec: keys.Legacy, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *Store) Backend() types.Backend { return s.backend }

// Codec returns the key codec in use.
func (s *Store) Codec() keys.Codec { return s.codec }

// Set overwrites the record at collection/key. A record with no fields
// besides id is rejected with ErrInvalidValue; use Remove to delete.
func (s *Store) Set(ctx context.Context, collection, key string, record any) Result {
	var res Result
	err := s.guard(ctx, "set", collection+"/"+key, func() error {
		path, err := s.recordPath(collection, key)
		if err != nil {
			return err
		}
		rec, err := storable(record)
		if err != nil {
			return err
		}
		if err := s.backend.Put(ctx, path, map[string]any(rec)); err != nil {
			return err
		}
		res = succeeded(key)
		return nil
	})
	if err != nil {
		return failed(err)
	}
	return res
}

// Get returns the record at collection/key, or nil when it is absent or
// the read fails.
func (s *Store) Get(ctx context.Context, collection, key string) types.Record {
	var rec types.Record
	s.guard(ctx, "get", collection+"/"+key, func() error {
		path, err := s.recordPath(collection, key)
		if err != nil {
			return err
		}
		v, ok, err := s.backend.Read(ctx, path)
		if err != nil || !ok {
			return err
		}
		rec = asRecord(v)
		return nil
	})
	return rec
}

// Push stores record under a newly generated key and reports the key.
func (s *Store) Push(ctx context.Context, collection string, record any) Result {
	var res Result
	err := s.guard(ctx, "push", collection, func() error {
		if err := validCollection(collection); err != nil {
			return err
		}
		rec, err := storable(record)
		if err != nil {
			return err
		}
		key, err := s.backend.Append(ctx, []string{collection}, map[string]any(rec))
		if err != nil {
			return err
		}
		res = succeeded(key)
		return nil
	})
	if err != nil {
		return failed(err)
	}
	return res
}

// Remove deletes everything at path, a collection or a record path such
// as "cases/<id>". The root cannot be removed.
func (s *Store) Remove(ctx context.Context, path string) Result {
	err := s.guard(ctx, "remove", path, func() error {
		segs, err := s.parsePath(path)
		if err != nil {
			return err
		}
		if len(segs) == 0 {
			return fmt.Errorf("%w: refusing to remove the root", types.ErrInvalidPath)
		}
		return s.backend.Delete(ctx, segs)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded("")
}

// GetAll returns every record in collection in key order. Each record
// carries its decoded key in the id field. Absence and failure both yield
// an empty slice.
func (s *Store) GetAll(ctx context.Context, collection string) []types.Record {
	out := []types.Record{}
	s.guard(ctx, "getAll", collection, func() error {
		if err := validCollection(collection); err != nil {
			return err
		}
		kids, err := s.backend.Children(ctx, []string{collection})
		if err != nil {
			return err
		}
		for _, c := range kids {
			out = append(out, s.withID(c.Key, c.Value))
		}
		return nil
	})
	return out
}

// GetFirst returns the first record of collection in key order, with its
// id, or nil. Nothing guarantees the collection holds only one record.
func (s *Store) GetFirst(ctx context.Context, collection string) types.Record {
	var rec types.Record
	s.guard(ctx, "getFirst", collection, func() error {
		if err := validCollection(collection); err != nil {
			return err
		}
		kids, err := s.backend.Children(ctx, []string{collection})
		if err != nil || len(kids) == 0 {
			return err
		}
		rec = s.withID(kids[0].Key, kids[0].Value)
		return nil
	})
	return rec
}

// Exec writes value at an arbitrary path, overwriting what is there. A
// nil value deletes the path.
func (s *Store) Exec(ctx context.Context, path string, value any) Result {
	err := s.guard(ctx, "exec", path, func() error {
		segs, err := s.parsePath(path)
		if err != nil {
			return err
		}
		if len(segs) == 0 {
			return fmt.Errorf("%w: refusing to overwrite the root", types.ErrInvalidPath)
		}
		return s.backend.Put(ctx, segs, value)
	})
	if err != nil {
		return failed(err)
	}
	return succeeded("")
}

// Records converts a snapshot of a collection into records carrying
// decoded ids, in key order.
func (s *Store) Records(snap types.Snapshot) []types.Record {
	out := []types.Record{}
	m, ok := snap.Value.(map[string]any)
	if !snap.Exists || !ok {
		return out
	}
	for _, k := range tree.SortedKeys(m) {
		out = append(out, s.withID(k, m[k]))
	}
	return out
}

// guard runs fn, converting panics to errors, and records the outcome.
func (s *Store) guard(ctx context.Context, op, path string, fn func() error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", types.ErrPanic, r)
		}
		s.metrics.observe(op, start, err)
		if err != nil {
			s.logger.WarnContext(ctx, "store operation failed", "op", op, "path", path, "err", err)
		}
	}()
	if s.backend == nil {
		return types.ErrBackendClosed
	}
	return fn()
}

func (s *Store) recordPath(collection, key string) ([]string, error) {
	if err := validCollection(collection); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("%w: empty key", types.ErrInvalidKey)
	}
	enc := s.codec.Encode(key)
	if strings.Contains(enc, "/") {
		return nil, fmt.Errorf("%w: %q contains '/'", types.ErrInvalidKey, key)
	}
	return []string{collection, enc}, nil
}

// parsePath splits a slash-separated path. The first segment is a
// collection name and is kept as is; later segments are keys and are
// encoded.
func (s *Store) parsePath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidPath, path)
		}
		if i > 0 {
			parts[i] = s.codec.Encode(p)
		}
	}
	return parts, nil
}

func (s *Store) withID(key string, v any) types.Record {
	rec := asRecord(v)
	if rec == nil {
		rec = types.Record{"value": v}
	}
	rec[types.IDField] = s.codec.Decode(key)
	return rec
}

func asRecord(v any) types.Record {
	switch m := v.(type) {
	case map[string]any:
		return types.Record(m)
	case types.Record:
		return m
	}
	return nil
}

func validCollection(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: collection %q", types.ErrInvalidPath, name)
	}
	return nil
}

// storable converts record for Set and Push. Backends treat an empty map
// as a delete, so a record left empty once id is dropped is refused.
func storable(record any) (types.Record, error) {
	rec, err := types.ToRecord(record)
	if err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%w: empty record", types.ErrInvalidValue)
	}
	return rec, nil
}
