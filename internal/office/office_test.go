package office

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/docket/internal/memdb"
	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var lawyer = audit.Actor{ID: "adv@firm.com", Name: "Av. Ayşe"}

// clock advances one second on every reading so timestamps are distinct.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store  *store.Store
	office *Office
	clock  *clock
}

func setup(t *testing.T) fixture {
	t.Helper()
	mem, err := memdb.New(memdb.WithLogger(quiet))
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })
	return setupOn(t, mem)
}

func setupOn(t *testing.T, b types.Backend) fixture {
	t.Helper()
	clk := newClock()
	s := store.New(b, store.WithLogger(quiet))
	log := audit.New(s, audit.WithClock(clk.Now), audit.WithLogger(quiet))
	o := New(s, log,
		WithClock(clk.Now),
		WithLogger(quiet),
		WithHashCost(bcrypt.MinCost))
	return fixture{store: s, office: o, clock: clk}
}

func (f fixture) logs(t *testing.T) []types.ActivityLog {
	t.Helper()
	return store.AllAs[types.ActivityLog](context.Background(), f.store, types.ActivityLogs)
}

func sampleCase() types.Case {
	return types.Case{
		CaseNumber: "2024/55",
		Title:      "Foo",
		ClientName: "Ayşe Yılmaz",
		LawyerID:   "adv@firm.com",
		TotalFee:   1000,
		Status:     "Open",
	}
}
