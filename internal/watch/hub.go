// Package watch fans change notifications out to path subscribers for the
// in-process backends.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Reader returns the current value at a path.
type Reader func(ctx context.Context, path []string) (any, bool, error)

// Hub tracks subscriptions and delivers snapshots to them. Each delivery
// reads the current value, so a subscriber always converges on the last
// write even when notifications race.
type Hub struct {
	read   Reader
	logger *slog.Logger

	mu   sync.Mutex
	next uint64
	subs map[uint64]*subscription
}

// NewHub creates a hub that reads values through read.
func NewHub(read Reader, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		read:   read,
		logger: logger,
		subs:   make(map[uint64]*subscription),
	}
}

type subscription struct {
	hub  *Hub
	id   uint64
	path []string
	fn   func(types.Snapshot)

	mu         sync.Mutex // guards delivering and pending, never held across fn
	delivering bool
	pending    bool
	cancelled  atomic.Bool
	once       sync.Once
	done       chan struct{}
}

// Subscribe registers fn for path and delivers the current value before
// returning. The subscription ends on Cancel or when ctx is done.
func (h *Hub) Subscribe(ctx context.Context, path []string, fn func(types.Snapshot)) types.Subscription {
	s := &subscription{
		hub:  h,
		path: append([]string(nil), path...),
		fn:   fn,
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.next++
	s.id = h.next
	h.subs[s.id] = s
	h.mu.Unlock()

	h.deliver(s)

	go func() {
		select {
		case <-ctx.Done():
			s.Cancel()
		case <-s.done:
		}
	}()
	return s
}

// Notify delivers to every subscriber whose path is related to changed.
func (h *Hub) Notify(changed []string) {
	h.mu.Lock()
	var targets []*subscription
	for _, s := range h.subs {
		if Related(s.path, changed) {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		h.deliver(s)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close cancels every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Cancel()
	}
}

// deliver runs fn with the current value. Deliveries to one subscription
// never overlap: a delivery requested while another is running, including
// one triggered by a write from inside fn, is folded into a re-read by the
// running deliverer. No lock is held while fn runs, so fn may write to the
// path it watches.
func (h *Hub) deliver(s *subscription) {
	s.mu.Lock()
	if s.delivering {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.delivering = true
	s.mu.Unlock()

	for {
		h.deliverOnce(s)

		s.mu.Lock()
		if !s.pending || s.cancelled.Load() {
			s.pending = false
			s.delivering = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()
	}
}

func (h *Hub) deliverOnce(s *subscription) {
	if s.cancelled.Load() {
		return
	}
	v, ok, err := h.read(context.Background(), s.path)
	if err != nil {
		h.logger.Warn("watch read failed", "path", s.path, "err", err)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("watch callback panicked", "path", s.path, "panic", r)
		}
	}()
	s.fn(types.Snapshot{Path: s.path, Value: v, Exists: ok})
}

// Cancel stops delivery. It is safe to call more than once and from
// inside the callback.
func (s *subscription) Cancel() {
	s.once.Do(func() {
		s.cancelled.Store(true)
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.done)
	})
}

// Related reports whether a change at b can affect a watcher of a: one
// path is a prefix of the other.
func Related(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
