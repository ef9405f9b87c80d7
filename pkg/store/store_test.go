package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/backendtest"
	"github.com/mesh-intelligence/docket/internal/memdb"
	"github.com/mesh-intelligence/docket/internal/sqlite"
	"github.com/mesh-intelligence/docket/pkg/keys"
	"github.com/mesh-intelligence/docket/pkg/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newMem(t *testing.T) *memdb.Backend {
	t.Helper()
	b, err := memdb.New(memdb.WithLogger(quiet))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return New(newMem(t), append([]Option{WithLogger(quiet)}, opts...)...)
}

func TestSetThenGet(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := types.Record{"name": "Av. Ayşe", "email": "adv@firm.com", "color": "#4caf50"}

	res := s.Set(ctx, types.Lawyers, "adv@firm.com", r)
	require.True(t, res.Success, "set failed: %v", res.Err)
	assert.Equal(t, "adv@firm.com", res.Key)

	assert.Equal(t, r, s.Get(ctx, types.Lawyers, "adv@firm.com"))

	raw, ok, err := s.Backend().Read(ctx, []string{types.Lawyers, "adv_AT_firm_DOT_com"})
	require.NoError(t, err)
	assert.True(t, ok, "key is stored encoded")
	assert.Equal(t, map[string]any(r), raw)
}

func TestSetOverwritesWholeRecord(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.True(t, s.Set(ctx, types.Clients, "c1", types.Record{"name": "Ali", "phone": "555"}).Success)
	require.True(t, s.Set(ctx, types.Clients, "c1", types.Record{"name": "Ali Veli"}).Success)
	assert.Equal(t, types.Record{"name": "Ali Veli"}, s.Get(ctx, types.Clients, "c1"))
}

func TestEmptyRecordIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.True(t, s.Set(ctx, types.Clients, "c1", types.Record{"name": "Ali"}).Success)

	for name, rec := range map[string]any{
		"no fields": types.Record{},
		"only id":   types.Record{"id": "c1"},
		"empty map": map[string]any{},
	} {
		t.Run(name, func(t *testing.T) {
			res := s.Set(ctx, types.Clients, "c1", rec)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, types.ErrInvalidValue)

			res = s.Push(ctx, types.Clients, rec)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, types.ErrInvalidValue)
		})
	}
	assert.Equal(t, types.Record{"name": "Ali"}, s.Get(ctx, types.Clients, "c1"), "existing record is untouched")
	assert.Len(t, s.GetAll(ctx, types.Clients), 1)
}

func TestGetAbsentReturnsNil(t *testing.T) {
	s := newStore(t)
	assert.Nil(t, s.Get(context.Background(), types.Cases, "nope"))
	assert.Nil(t, s.GetFirst(context.Background(), types.Cases))
}

func TestPushConcurrentKeysAreUnique(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	const n = 50

	results := make([]Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Push(ctx, types.ActivityLogs, types.Record{"n": i})
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, r := range results {
		require.True(t, r.Success, "push failed: %v", r.Err)
		seen[r.Key] = true
	}
	assert.Len(t, seen, n)
	assert.Len(t, s.GetAll(ctx, types.ActivityLogs), n)
}

func TestRemoveRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.True(t, s.Set(ctx, types.Lawyers, email, types.Record{"email": email}).Success)
	}

	res := s.Remove(ctx, "lawyers/b@x.com")
	require.True(t, res.Success, "remove failed: %v", res.Err)

	assert.Nil(t, s.Get(ctx, types.Lawyers, "b@x.com"))
	assert.NotNil(t, s.Get(ctx, types.Lawyers, "a@x.com"))
	assert.NotNil(t, s.Get(ctx, types.Lawyers, "c@x.com"))
	assert.Len(t, s.GetAll(ctx, types.Lawyers), 2)
}

func TestRemoveCollectionAndRoot(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.Push(ctx, types.Cases, types.Record{"title": "Foo"})

	res := s.Remove(ctx, "")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrInvalidPath)

	require.True(t, s.Remove(ctx, "/cases/").Success)
	assert.Empty(t, s.GetAll(ctx, types.Cases))
}

func TestGetAllCarriesDecodedIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.True(t, s.Set(ctx, types.Lawyers, "z.z@firm.com", types.Record{"name": "Z"}).Success)
	require.True(t, s.Set(ctx, types.Lawyers, "a@firm.com", types.Record{"name": "A"}).Success)

	all := s.GetAll(ctx, types.Lawyers)
	require.Len(t, all, 2)
	assert.Equal(t, types.Record{"id": "a@firm.com", "name": "A"}, all[0])
	assert.Equal(t, types.Record{"id": "z.z@firm.com", "name": "Z"}, all[1])

	first := s.GetFirst(ctx, types.Lawyers)
	assert.Equal(t, "a@firm.com", first.ID())
}

func TestGetAllEmptyIsEmptySlice(t *testing.T) {
	got := newStore(t).GetAll(context.Background(), types.Documents)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetAllWrapsScalarChildren(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.True(t, s.Exec(ctx, "settings/theme", "dark").Success)
	assert.Equal(t, []types.Record{{"id": "theme", "value": "dark"}}, s.GetAll(ctx, "settings"))
}

func TestExecWritesRawPath(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.True(t, s.Set(ctx, types.Cases, "c1", types.Record{"title": "Foo", "status": types.CaseOpen}).Success)
	require.True(t, s.Exec(ctx, "cases/c1/status", types.CaseClosed).Success)
	assert.Equal(t, types.CaseClosed, s.Get(ctx, types.Cases, "c1").String("status"))

	res := s.Exec(ctx, "", "x")
	assert.ErrorIs(t, res.Err, types.ErrInvalidPath)
}

func TestInvalidArgumentsAreResults(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	assert.ErrorIs(t, s.Set(ctx, "", "k", types.Record{"a": 1}).Err, types.ErrInvalidPath)
	assert.ErrorIs(t, s.Set(ctx, types.Cases, "", types.Record{"a": 1}).Err, types.ErrInvalidKey)
	assert.ErrorIs(t, s.Set(ctx, types.Cases, "a/b", types.Record{"a": 1}).Err, types.ErrInvalidKey)
	assert.ErrorIs(t, s.Set(ctx, types.Cases, "k", nil).Err, types.ErrInvalidValue)
	assert.ErrorIs(t, s.Push(ctx, types.Cases, "not a record").Err, types.ErrInvalidValue)
	assert.ErrorIs(t, s.Remove(ctx, "cases//x").Err, types.ErrInvalidPath)
}

func TestBackendFailuresBecomeResults(t *testing.T) {
	ctx := context.Background()
	fb := backendtest.NewFailing(newMem(t))
	s := New(fb, WithLogger(quiet))

	fb.FailWrites(types.Cases)
	res := s.Set(ctx, types.Cases, "c1", types.Record{"title": "x"})
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, backendtest.ErrInjected)

	res = s.Push(ctx, types.Cases, types.Record{"title": "x"})
	assert.False(t, res.Success)
	assert.Empty(t, res.Key)

	assert.False(t, s.Remove(ctx, "cases/c1").Success)
	assert.True(t, s.Push(ctx, types.Clients, types.Record{"name": "y"}).Success, "other collections unaffected")
}

func TestPanicsAreRecovered(t *testing.T) {
	ctx := context.Background()
	fb := backendtest.NewFailing(newMem(t))
	s := New(fb, WithLogger(quiet))
	fb.PanicWrites(types.Cases)

	var res Result
	require.NotPanics(t, func() { res = s.Push(ctx, types.Cases, types.Record{"title": "x"}) })
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, types.ErrPanic)
}

func TestReadFailuresAreEmpty(t *testing.T) {
	ctx := context.Background()
	fb := backendtest.NewFailing(newMem(t))
	s := New(fb, WithLogger(quiet))
	require.True(t, s.Set(ctx, types.Cases, "c1", types.Record{"title": "x"}).Success)

	fb.FailReads()
	assert.Nil(t, s.Get(ctx, types.Cases, "c1"))
	assert.Empty(t, s.GetAll(ctx, types.Cases))
	assert.Nil(t, s.GetFirst(ctx, types.Cases))
}

func TestMetricsCountOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	fb := backendtest.NewFailing(newMem(t))
	s := New(fb, WithLogger(quiet), WithMetrics(m))

	s.Set(ctx, types.Cases, "a", types.Record{"x": 1})
	fb.FailWrites(types.Cases)
	s.Set(ctx, types.Cases, "b", types.Record{"x": 1})
	s.Set(ctx, types.Cases, "c", types.Record{"x": 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ops.WithLabelValues("set", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ops.WithLabelValues("set", "error")))
}

func TestPercentCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithCodec(keys.Percent))
	key := "x_DOT_y@firm.com"
	require.True(t, s.Set(ctx, types.Lawyers, key, types.Record{"name": "X"}).Success)

	assert.Equal(t, types.Record{"name": "X"}, s.Get(ctx, types.Lawyers, key))
	all := s.GetAll(ctx, types.Lawyers)
	require.Len(t, all, 1)
	assert.Equal(t, key, all[0].ID())
}

func TestTypedHelpers(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	c := types.Case{
		LawyerID: "adv@firm.com", CaseNumber: "2024/55", Title: "Foo",
		ClientName: "Ayşe Yılmaz", Status: types.CaseOpen, TotalFee: 1000, RemainingFee: 1000,
	}
	res := s.Push(ctx, types.Cases, c)
	require.True(t, res.Success)

	got, ok := GetAs[types.Case](ctx, s, types.Cases, res.Key)
	require.True(t, ok)
	c.ID = res.Key
	assert.Equal(t, c, got)

	all := AllAs[types.Case](ctx, s, types.Cases)
	require.Len(t, all, 1)
	assert.Equal(t, c, all[0])

	_, ok = GetAs[types.Case](ctx, s, types.Cases, "missing")
	assert.False(t, ok)
}

type snaps struct {
	mu  sync.Mutex
	got []types.Snapshot
}

func (s *snaps) add(v types.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, v)
}

func (s *snaps) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func (s *snaps) last() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.got[len(s.got)-1]
}

func TestOnFiresImmediatelyAndOnChange(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.Set(ctx, types.ChatMessages, "m1", types.Record{"message": "merhaba"})

	var got snaps
	l, err := s.On(ctx, "chat_messages", got.add)
	require.NoError(t, err)
	defer s.Off(l)

	require.Equal(t, 1, got.count())
	assert.Len(t, s.Records(got.last()), 1)

	s.Push(ctx, types.ChatMessages, types.Record{"message": "selam"})
	require.Eventually(t, func() bool { return got.count() == 2 }, time.Second, 5*time.Millisecond)
	recs := s.Records(got.last())
	require.Len(t, recs, 2)
	assert.Equal(t, "m1", recs[0].ID())
}

func TestOffStopsCallbacks(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	var got snaps
	l, err := s.On(ctx, "cases", got.add)
	require.NoError(t, err)
	assert.Equal(t, "cases", l.Path())

	s.Off(l)
	s.Off(l)
	s.Off(nil)
	for i := 0; i < 3; i++ {
		s.Push(ctx, types.Cases, types.Record{"n": i})
	}
	assert.Equal(t, 1, got.count())
}

func TestOnEndsWithContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	var got snaps
	_, err := s.On(ctx, "cases", got.add)
	require.NoError(t, err)
	cancel()

	for i := 0; i < 3; i++ {
		s.Push(context.Background(), types.Cases, types.Record{"n": i})
	}
	assert.Equal(t, 1, got.count(), "no callback fires into a finished caller")
}

func TestOnPanickingCallback(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	calls := 0
	l, err := s.On(ctx, "cases", func(types.Snapshot) {
		calls++
		panic(fmt.Sprintf("call %d", calls))
	})
	require.NoError(t, err)
	defer s.Off(l)

	assert.NotPanics(t, func() { s.Push(ctx, types.Cases, types.Record{"n": 1}) })
	assert.Equal(t, 2, calls)
}

func TestOnInvalidPath(t *testing.T) {
	s := newStore(t)
	l, err := s.On(context.Background(), "cases//x", func(types.Snapshot) {})
	assert.Nil(t, l)
	assert.ErrorIs(t, err, types.ErrInvalidPath)
}

func TestListenerMayWriteToWatchedPath(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) types.Backend
	}{
		{"memdb", func(t *testing.T) types.Backend { return newMem(t) }},
		{"sqlite", func(t *testing.T) types.Backend {
			b, err := sqlite.Open(filepath.Join(t.TempDir(), "firm1.db"), sqlite.WithLogger(quiet))
			require.NoError(t, err)
			t.Cleanup(func() { b.Close() })
			return b
		}},
	}
	for _, bk := range backends {
		t.Run(bk.name, func(t *testing.T) {
			ctx := context.Background()
			s := New(bk.open(t), WithLogger(quiet))
			s.Set(ctx, types.ChatMessages, "m1", types.Record{"message": "merhaba", "is_read": false})
			s.Set(ctx, types.ChatMessages, "m2", types.Record{"message": "selam", "is_read": false})

			var got snaps
			markRead := func(snap types.Snapshot) {
				got.add(snap)
				for _, r := range s.Records(snap) {
					if r["is_read"] != false {
						continue
					}
					read := r.Clone()
					delete(read, types.IDField)
					read["is_read"] = true
					s.Set(ctx, types.ChatMessages, r.ID(), read)
				}
			}

			on := make(chan *Listener, 1)
			go func() {
				l, err := s.On(ctx, "chat_messages", markRead)
				assert.NoError(t, err)
				on <- l
			}()
			var l *Listener
			select {
			case l = <-on:
			case <-time.After(3 * time.Second):
				t.Fatal("On did not return while its callback wrote to the watched path")
			}
			defer s.Off(l)

			require.Eventually(t, func() bool {
				for _, r := range s.Records(got.last()) {
					if r["is_read"] != true {
						return false
					}
				}
				return true
			}, time.Second, 5*time.Millisecond)
			for _, r := range s.GetAll(ctx, types.ChatMessages) {
				assert.Equal(t, true, r["is_read"], r.ID())
			}
		})
	}
}
