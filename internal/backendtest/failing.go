package backendtest

import (
	"context"
	"errors"
	"sync"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// ErrInjected is returned by Failing for writes it was told to fail.
var ErrInjected = errors.New("injected failure")

// Failing wraps a backend and fails or panics on writes to chosen
// collections. Reads pass through unless FailReads is set.
type Failing struct {
	types.Backend

	mu        sync.Mutex
	fail      map[string]bool
	panics    map[string]bool
	failReads bool
}

// NewFailing wraps b.
func NewFailing(b types.Backend) *Failing {
	return &Failing{Backend: b, fail: map[string]bool{}, panics: map[string]bool{}}
}

// FailWrites makes every write under collection return ErrInjected.
func (f *Failing) FailWrites(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[collection] = true
}

// PanicWrites makes every write under collection panic.
func (f *Failing) PanicWrites(collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.panics[collection] = true
}

// FailReads makes every read return ErrInjected.
func (f *Failing) FailReads() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = true
}

func (f *Failing) check(path []string) error {
	if len(path) == 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics[path[0]] {
		panic("injected panic on " + path[0])
	}
	if f.fail[path[0]] {
		return ErrInjected
	}
	return nil
}

func (f *Failing) readErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReads {
		return ErrInjected
	}
	return nil
}

// Put implements types.Backend.
func (f *Failing) Put(ctx context.Context, path []string, value any) error {
	if err := f.check(path); err != nil {
		return err
	}
	return f.Backend.Put(ctx, path, value)
}

// Append implements types.Backend.
func (f *Failing) Append(ctx context.Context, path []string, value any) (string, error) {
	if err := f.check(path); err != nil {
		return "", err
	}
	return f.Backend.Append(ctx, path, value)
}

// Delete implements types.Backend.
func (f *Failing) Delete(ctx context.Context, path []string) error {
	if err := f.check(path); err != nil {
		return err
	}
	return f.Backend.Delete(ctx, path)
}

// Read implements types.Backend.
func (f *Failing) Read(ctx context.Context, path []string) (any, bool, error) {
	if err := f.readErr(); err != nil {
		return nil, false, err
	}
	return f.Backend.Read(ctx, path)
}

// Children implements types.Backend.
func (f *Failing) Children(ctx context.Context, path []string) ([]types.Child, error) {
	if err := f.readErr(); err != nil {
		return nil, err
	}
	return f.Backend.Children(ctx, path)
}
