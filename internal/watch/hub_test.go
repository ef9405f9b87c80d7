package watch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

type mapReader struct {
	mu   sync.Mutex
	vals map[string]any
}

func (m *mapReader) set(path string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[path] = v
}

func (m *mapReader) read(_ context.Context, path []string) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[strings.Join(path, "/")]
	return v, ok, nil
}

func newTestHub() (*Hub, *mapReader) {
	r := &mapReader{vals: map[string]any{}}
	return NewHub(r.read, slog.New(slog.NewTextHandler(io.Discard, nil))), r
}

type recorder struct {
	mu    sync.Mutex
	snaps []types.Snapshot
}

func (r *recorder) fn(s types.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []types.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.Snapshot(nil), r.snaps...)
}

func TestSubscribeDeliversCurrentValue(t *testing.T) {
	h, r := newTestHub()
	r.set("cases/c1", "v1")

	var rec recorder
	sub := h.Subscribe(context.Background(), []string{"cases", "c1"}, rec.fn)
	defer sub.Cancel()

	got := rec.all()
	require.Len(t, got, 1)
	assert.True(t, got[0].Exists)
	assert.Equal(t, "v1", got[0].Value)
}

func TestNotifyRelatedPathsOnly(t *testing.T) {
	h, _ := newTestHub()
	var rec recorder
	sub := h.Subscribe(context.Background(), []string{"cases"}, rec.fn)
	defer sub.Cancel()

	h.Notify([]string{"cases", "c1"})
	h.Notify([]string{"clients", "x"})
	h.Notify(nil)

	assert.Len(t, rec.all(), 3, "initial, descendant change and root change")
}

func TestCancelStopsDelivery(t *testing.T) {
	h, _ := newTestHub()
	var rec recorder
	sub := h.Subscribe(context.Background(), []string{"cases"}, rec.fn)
	sub.Cancel()
	sub.Cancel()

	h.Notify([]string{"cases"})
	assert.Len(t, rec.all(), 1)
	assert.Equal(t, 0, h.Len())
}

func TestContextCancelEndsSubscription(t *testing.T) {
	h, _ := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	var rec recorder
	h.Subscribe(ctx, []string{"cases"}, rec.fn)
	require.Equal(t, 1, h.Len())

	cancel()
	require.Eventually(t, func() bool { return h.Len() == 0 }, timeout, tick)

	h.Notify([]string{"cases"})
	assert.Len(t, rec.all(), 1)
}

func TestCallbackPanicIsContained(t *testing.T) {
	h, _ := newTestHub()
	calls := 0
	sub := h.Subscribe(context.Background(), []string{"a"}, func(types.Snapshot) {
		calls++
		panic("boom")
	})
	defer sub.Cancel()

	assert.NotPanics(t, func() { h.Notify([]string{"a"}) })
	assert.Equal(t, 2, calls)
}

func TestRelated(t *testing.T) {
	assert.True(t, Related([]string{"a"}, []string{"a", "b"}))
	assert.True(t, Related([]string{"a", "b"}, []string{"a"}))
	assert.True(t, Related(nil, []string{"a"}))
	assert.False(t, Related([]string{"a", "b"}, []string{"a", "c"}))
}

// within fails the test when fn does not return in time.
func within(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%s did not return", what)
	}
}

func TestCallbackMayWriteToItsOwnPath(t *testing.T) {
	h, r := newTestHub()
	r.set("chat/m1", false)

	var rec recorder
	markRead := func(s types.Snapshot) {
		rec.fn(s)
		if s.Value == false {
			r.set("chat/m1", true)
			h.Notify([]string{"chat", "m1"})
		}
	}

	var sub types.Subscription
	within(t, "Subscribe", func() {
		sub = h.Subscribe(context.Background(), []string{"chat", "m1"}, markRead)
	})
	defer sub.Cancel()

	got := rec.all()
	require.Len(t, got, 2, "the write from the first delivery is delivered once more")
	assert.Equal(t, false, got[0].Value)
	assert.Equal(t, true, got[1].Value)

	within(t, "Notify", func() { h.Notify([]string{"chat"}) })
	assert.Len(t, rec.all(), 3)
}

func TestWritingSubscribersOnOnePath(t *testing.T) {
	h, r := newTestHub()
	r.set("n", 0)

	var armed atomic.Bool
	var a, b recorder
	bump := func(rec *recorder) func(types.Snapshot) {
		return func(s types.Snapshot) {
			rec.fn(s)
			if n := s.Value.(int); armed.Load() && n < 3 {
				r.set("n", n+1)
				h.Notify([]string{"n"})
			}
		}
	}
	subA := h.Subscribe(context.Background(), []string{"n"}, bump(&a))
	defer subA.Cancel()
	subB := h.Subscribe(context.Background(), []string{"n"}, bump(&b))
	defer subB.Cancel()

	armed.Store(true)
	within(t, "Notify", func() { h.Notify([]string{"n"}) })

	v, _, _ := r.read(context.Background(), []string{"n"})
	assert.Equal(t, 3, v)
	for _, rec := range []*recorder{&a, &b} {
		got := rec.all()
		assert.Equal(t, 3, got[len(got)-1].Value, "every subscriber converges on the last write")
	}
}
