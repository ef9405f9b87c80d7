package types

import "context"

// Backend is a hierarchical key-value store. Paths are slices of segments
// that have already been key-encoded; backends never encode or decode keys.
// Values are JSON-compatible trees: map[string]any, []any, string, float64,
// bool, or nil.
type Backend interface {
	// Put overwrites the subtree at path. A nil value deletes it.
	Put(ctx context.Context, path []string, value any) error

	// Read returns the value at path. The boolean is false when nothing
	// is stored there.
	Read(ctx context.Context, path []string) (any, bool, error)

	// Children returns the direct children of the node at path ordered by
	// key ascending. An absent node has no children.
	Children(ctx context.Context, path []string) ([]Child, error)

	// Append stores value under a newly generated key below path and
	// returns the key. Keys are UUID v7 strings, so they sort by creation
	// time and never collide between concurrent callers.
	Append(ctx context.Context, path []string, value any) (string, error)

	// Delete removes the subtree at path. Deleting an absent path succeeds.
	Delete(ctx context.Context, path []string) error

	// Watch calls fn once with the current value at path and again after
	// every change to the path, an ancestor, or a descendant. Delivery
	// stops when the subscription is cancelled or ctx is done.
	Watch(ctx context.Context, path []string, fn func(Snapshot)) (Subscription, error)

	// Close releases resources. Operations after Close return
	// ErrBackendClosed.
	Close() error
}

// Child is one direct child of a node.
type Child struct {
	Key   string
	Value any
}

// Snapshot is the state of a watched path at one point in time.
type Snapshot struct {
	Path   []string
	Value  any
	Exists bool
}

// Subscription is a live Watch registration.
type Subscription interface {
	Cancel()
}
