package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Listener is a live subscription created by On.
type Listener struct {
	path   string
	sub    types.Subscription
	cancel context.CancelFunc
	once   sync.Once
}

// Path returns the path the listener watches.
func (l *Listener) Path() string { return l.path }

// On calls fn with the current value at path and again after every change
// to it. The listener ends on Off or when ctx is done, so callbacks never
// outlive the caller's context. A panicking callback is recovered.
func (s *Store) On(ctx context.Context, path string, fn func(types.Snapshot)) (*Listener, error) {
	var l *Listener
	err := s.guard(ctx, "on", path, func() error {
		segs, err := s.parsePath(path)
		if err != nil {
			return err
		}
		wctx, cancel := context.WithCancel(ctx)
		safe := func(snap types.Snapshot) {
			if wctx.Err() != nil {
				return
			}
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("listener callback panicked", "path", path, "panic", fmt.Sprint(r))
				}
			}()
			fn(snap)
		}
		sub, err := s.backend.Watch(wctx, segs, safe)
		if err != nil {
			cancel()
			return err
		}
		l = &Listener{path: path, sub: sub, cancel: cancel}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Off ends a listener. It is safe to call more than once or with nil.
func (s *Store) Off(l *Listener) {
	if l == nil {
		return
	}
	l.once.Do(func() {
		l.cancel()
		l.sub.Cancel()
	})
}
