package audit

import (
	"context"
	"sort"
	"time"

	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// AllTargets is the filter label that matches every target type.
const AllTargets = "Tümü"

// Filter narrows a Feed. Zero values match everything.
type Filter struct {
	Target  EntityType
	Action  ActionType
	ActorID string
	Limit   int
}

// Feed lists activity log entries newest first. Entries without a
// user_name take the name of the matching lawyer, or Bilinmeyen when the
// lawyer no longer exists.
func Feed(ctx context.Context, s *store.Store, f Filter) []types.ActivityLog {
	logs := store.AllAs[types.ActivityLog](ctx, s, types.ActivityLogs)

	names := map[string]string{}
	out := make([]types.ActivityLog, 0, len(logs))
	for _, l := range logs {
		if f.Target != "" && f.Target != AllTargets && string(f.Target) != l.TargetType {
			continue
		}
		if f.Action != "" && string(f.Action) != l.ActionType {
			continue
		}
		if f.ActorID != "" && f.ActorID != l.UserID {
			continue
		}
		if l.UserName == "" {
			l.UserName = lawyerName(ctx, s, names, l.UserID)
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := parseTime(out[i].CreatedAt), parseTime(out[j].CreatedAt)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func lawyerName(ctx context.Context, s *store.Store, cache map[string]string, id string) string {
	if n, ok := cache[id]; ok {
		return n
	}
	name := types.Unknown
	if id != "" {
		if rec := s.Get(ctx, types.Lawyers, id); rec != nil && rec.String("name") != "" {
			name = rec.String("name")
		}
	}
	cache[id] = name
	return name
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
