// Package backendtest holds the conformance suite every types.Backend
// implementation runs in its own tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

const (
	waitFor = 3 * time.Second
	tick    = 10 * time.Millisecond
)

// Factory returns a fresh, empty backend. The suite closes it.
type Factory func(t *testing.T) types.Backend

// Run executes the conformance suite against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, b types.Backend)
	}{
		{"PutThenRead", testPutThenRead},
		{"PutOverwrites", testPutOverwrites},
		{"ReadAbsent", testReadAbsent},
		{"ChildrenOrdered", testChildrenOrdered},
		{"AppendUniqueUnderConcurrency", testAppendConcurrent},
		{"DeleteRemovesExactlyOne", testDeleteOne},
		{"DeleteCollection", testDeleteCollection},
		{"DeleteAbsent", testDeleteAbsent},
		{"NestedPath", testNestedPath},
		{"PutNilDeletes", testPutNilDeletes},
		{"ScalarAtCollectionLevel", testScalarCollection},
		{"InvalidPath", testInvalidPath},
		{"WatchImmediateAndOnChange", testWatch},
		{"WatchCancel", testWatchCancel},
		{"WatchContextDone", testWatchContext},
		{"ClosedBackend", testClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			defer b.Close()
			tt.fn(t, b)
		})
	}
}

func record(title string, fee float64) map[string]any {
	return map[string]any{"title": title, "total_fee": fee, "status": "Açık"}
}

func testPutThenRead(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, record("Foo", 1000)))

	v, ok, err := b.Read(ctx, []string{"cases", "c1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, record("Foo", 1000), v)
}

func testPutOverwrites(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, map[string]any{"title": "Foo", "court_name": "Ankara 3. Asliye"}))
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, map[string]any{"title": "Bar"}))

	v, ok, err := b.Read(ctx, []string{"cases", "c1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"title": "Bar"}, v, "put replaces, never merges")
}

func testReadAbsent(t *testing.T, b types.Backend) {
	ctx := context.Background()
	v, ok, err := b.Read(ctx, []string{"cases", "missing"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)

	kids, err := b.Children(ctx, []string{"nothing"})
	require.NoError(t, err)
	assert.Empty(t, kids)
}

func testChildrenOrdered(t *testing.T, b types.Backend) {
	ctx := context.Background()
	for _, k := range []string{"k3", "k1", "k2"} {
		require.NoError(t, b.Put(ctx, []string{"clients", k}, map[string]any{"name": k}))
	}
	kids, err := b.Children(ctx, []string{"clients"})
	require.NoError(t, err)
	require.Len(t, kids, 3)
	for i, want := range []string{"k1", "k2", "k3"} {
		assert.Equal(t, want, kids[i].Key)
		assert.Equal(t, map[string]any{"name": want}, kids[i].Value)
	}

	root, err := b.Children(ctx, nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, "clients", root[0].Key)
}

func testAppendConcurrent(t *testing.T, b types.Backend) {
	ctx := context.Background()
	const n = 40
	keys := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys[i], errs[i] = b.Append(ctx, []string{"activity_logs"}, map[string]any{"n": float64(i)})
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotEmpty(t, keys[i])
		seen[keys[i]] = true
	}
	assert.Len(t, seen, n, "every append gets a distinct key")

	kids, err := b.Children(ctx, []string{"activity_logs"})
	require.NoError(t, err)
	assert.Len(t, kids, n)
}

func testDeleteOne(t *testing.T, b types.Backend) {
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, b.Put(ctx, []string{"cases", k}, record(k, 1)))
	}
	require.NoError(t, b.Delete(ctx, []string{"cases", "b"}))

	_, ok, err := b.Read(ctx, []string{"cases", "b"})
	require.NoError(t, err)
	assert.False(t, ok)
	for _, k := range []string{"a", "c"} {
		v, ok, err := b.Read(ctx, []string{"cases", k})
		require.NoError(t, err)
		require.True(t, ok, "sibling %s must survive", k)
		assert.Equal(t, record(k, 1), v)
	}
}

func testDeleteCollection(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"cases", "a"}, record("a", 1)))
	require.NoError(t, b.Put(ctx, []string{"clients", "x"}, map[string]any{"name": "x"}))
	require.NoError(t, b.Delete(ctx, []string{"cases"}))

	kids, err := b.Children(ctx, []string{"cases"})
	require.NoError(t, err)
	assert.Empty(t, kids)
	_, ok, err := b.Read(ctx, []string{"clients", "x"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func testDeleteAbsent(t *testing.T, b types.Backend) {
	assert.NoError(t, b.Delete(context.Background(), []string{"cases", "ghost"}))
}

func testNestedPath(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, record("Foo", 10)))
	require.NoError(t, b.Put(ctx, []string{"cases", "c1", "status"}, "Kapalı"))

	v, ok, err := b.Read(ctx, []string{"cases", "c1", "status"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Kapalı", v)

	whole, _, err := b.Read(ctx, []string{"cases", "c1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Foo", "total_fee": float64(10), "status": "Kapalı"}, whole)

	require.NoError(t, b.Delete(ctx, []string{"cases", "c1", "status"}))
	whole, _, err = b.Read(ctx, []string{"cases", "c1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Foo", "total_fee": float64(10)}, whole)
}

func testPutNilDeletes(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, record("Foo", 1)))
	require.NoError(t, b.Put(ctx, []string{"cases", "c1"}, nil))
	_, ok, err := b.Read(ctx, []string{"cases", "c1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func testScalarCollection(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"settings"}, "dark"))
	v, ok, err := b.Read(ctx, []string{"settings"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)
}

func testInvalidPath(t *testing.T, b types.Backend) {
	ctx := context.Background()
	assert.ErrorIs(t, b.Put(ctx, []string{"cases", ""}, record("x", 1)), types.ErrInvalidPath)
	_, _, err := b.Read(ctx, []string{"", "x"})
	assert.ErrorIs(t, err, types.ErrInvalidPath)
}

type collector struct {
	mu    sync.Mutex
	snaps []types.Snapshot
}

func (c *collector) add(s types.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
}

func (c *collector) last() (types.Snapshot, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snaps) == 0 {
		return types.Snapshot{}, 0
	}
	return c.snaps[len(c.snaps)-1], len(c.snaps)
}

func testWatch(t *testing.T, b types.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Put(ctx, []string{"chat_messages", "m1"}, map[string]any{"message": "merhaba"}))

	var c collector
	sub, err := b.Watch(ctx, []string{"chat_messages"}, c.add)
	require.NoError(t, err)
	defer sub.Cancel()

	require.Eventually(t, func() bool {
		s, n := c.last()
		return n >= 1 && s.Exists
	}, waitFor, tick, "watch fires immediately with current state")

	require.NoError(t, b.Put(ctx, []string{"chat_messages", "m2"}, map[string]any{"message": "selam"}))
	require.Eventually(t, func() bool {
		s, _ := c.last()
		m, ok := s.Value.(map[string]any)
		return ok && len(m) == 2
	}, waitFor, tick, "watch fires on descendant change")

	require.NoError(t, b.Delete(ctx, []string{"chat_messages"}))
	require.Eventually(t, func() bool {
		s, _ := c.last()
		return !s.Exists
	}, waitFor, tick, "watch fires on delete")
}

func testWatchCancel(t *testing.T, b types.Backend) {
	ctx := context.Background()
	var c collector
	sub, err := b.Watch(ctx, []string{"cases"}, c.add)
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, n := c.last(); return n >= 1 }, waitFor, tick)

	sub.Cancel()
	// Let any delivery already in flight land before counting.
	time.Sleep(50 * time.Millisecond)
	_, before := c.last()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Put(ctx, []string{"cases", fmt.Sprintf("c%d", i)}, record("x", 1)))
	}
	time.Sleep(100 * time.Millisecond)
	_, after := c.last()
	assert.Equal(t, before, after, "no callbacks after cancel")
}

func testWatchContext(t *testing.T, b types.Backend) {
	ctx, cancel := context.WithCancel(context.Background())
	var c collector
	_, err := b.Watch(ctx, []string{"cases"}, c.add)
	require.NoError(t, err)
	require.Eventually(t, func() bool { _, n := c.last(); return n >= 1 }, waitFor, tick)

	cancel()
	time.Sleep(100 * time.Millisecond)
	_, before := c.last()

	require.NoError(t, b.Put(context.Background(), []string{"cases", "late"}, record("x", 1)))
	time.Sleep(100 * time.Millisecond)
	_, after := c.last()
	assert.Equal(t, before, after, "no callbacks after the context ends")
}

func testClosed(t *testing.T, b types.Backend) {
	require.NoError(t, b.Close())
	ctx := context.Background()
	assert.ErrorIs(t, b.Put(ctx, []string{"cases", "x"}, record("x", 1)), types.ErrBackendClosed)
	_, _, err := b.Read(ctx, []string{"cases", "x"})
	assert.ErrorIs(t, err, types.ErrBackendClosed)
	_, err = b.Append(ctx, []string{"cases"}, record("x", 1))
	assert.ErrorIs(t, err, types.ErrBackendClosed)
	assert.NoError(t, b.Close(), "close is idempotent")
}
