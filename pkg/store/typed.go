package store

import (
	"context"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// GetAs reads collection/key into a T. The boolean is false when the
// record is absent or does not decode.
func GetAs[T any](ctx context.Context, s *Store, collection, key string) (T, bool) {
	var out T
	rec := s.Get(ctx, collection, key)
	if rec == nil {
		return out, false
	}
	rec = rec.Clone()
	rec[types.IDField] = key
	if err := types.Decode(rec, &out); err != nil {
		s.logger.WarnContext(ctx, "record decode failed", "collection", collection, "key", key, "err", err)
		return out, false
	}
	return out, true
}

// AllAs reads every record of collection into Ts, skipping records that
// do not decode.
func AllAs[T any](ctx context.Context, s *Store, collection string) []T {
	recs := s.GetAll(ctx, collection)
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		var v T
		if err := types.Decode(rec, &v); err != nil {
			s.logger.WarnContext(ctx, "record decode failed", "collection", collection, "id", rec.ID(), "err", err)
			continue
		}
		out = append(out, v)
	}
	return out
}
