package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mesh-intelligence/docket/internal/server"
	"github.com/mesh-intelligence/docket/pkg/types"
)

type subscription struct {
	once   sync.Once
	cancel func()
}

func (s *subscription) Cancel() { s.once.Do(s.cancel) }

// Watch implements types.Backend by consuming the server's event stream
// in a goroutine bound to ctx. The first snapshot arrives asynchronously.
func (b *Backend) Watch(ctx context.Context, path []string, fn func(types.Snapshot)) (types.Subscription, error) {
	if err := b.check(path); err != nil {
		return nil, err
	}
	sctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(sctx, http.MethodGet, b.url(server.StreamPrefix, path), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := b.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		cancel()
		return nil, decodeError(resp)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		resp.Body.Close()
		cancel()
		return nil, types.ErrBackendClosed
	}
	b.nextSub++
	id := b.nextSub
	b.streams[id] = cancel
	b.mu.Unlock()

	sub := &subscription{cancel: func() {
		cancel()
		b.mu.Lock()
		delete(b.streams, id)
		b.mu.Unlock()
	}}

	watched := append([]string(nil), path...)
	go func() {
		defer resp.Body.Close()
		defer sub.Cancel()
		err := readEvents(resp.Body, func(event, data string) {
			if event != "put" || sctx.Err() != nil {
				return
			}
			var body server.EventBody
			if err := json.Unmarshal([]byte(data), &body); err != nil {
				b.logger.Warn("bad stream event", "path", watched, "err", err)
				return
			}
			fn(types.Snapshot{Path: watched, Value: body.Data, Exists: body.Exists && body.Data != nil})
		})
		if err != nil && sctx.Err() == nil {
			b.logger.Warn("stream ended", "path", watched, "err", err)
		}
	}()
	return sub, nil
}

// readEvents parses a text/event-stream body and calls emit for every
// complete event.
func readEvents(r io.Reader, emit func(event, data string)) error {
	br := bufio.NewReader(r)
	var event string
	var data []string
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if len(data) > 0 || event != "" {
				emit(event, strings.Join(data, "\n"))
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}
