// Package remote implements types.Backend as a client of the docket HTTP
// server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/mesh-intelligence/docket/internal/server"
	"github.com/mesh-intelligence/docket/internal/tree"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Backend talks to a remote document store over HTTP.
type Backend struct {
	base   string
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	nextSub int
	streams map[int]context.CancelFunc
}

// Option configures a Backend.
type Option func(*Backend)

// WithHTTPClient replaces the default HTTP client. It must not set a
// request timeout, or streams are cut off.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Backend) { b.client = c }
}

// WithLogger sets the logger for stream errors.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Backend, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", baseURL)
	}
	b := &Backend{
		base:    strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  slog.Default(),
		streams: map[int]context.CancelFunc{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) url(prefix string, path []string) string {
	esc := make([]string, len(path))
	for i, p := range path {
		esc[i] = url.PathEscape(p)
	}
	return b.base + prefix + "/" + strings.Join(esc, "/")
}

func (b *Backend) check(path []string) error {
	if err := tree.ValidatePath(path); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return types.ErrBackendClosed
	}
	return nil
}

// do sends a request and decodes a successful JSON response into out.
func (b *Backend) do(ctx context.Context, method, target string, body any, out any) error {
	var rd io.Reader
	if method == http.MethodPut || method == http.MethodPost {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrInvalidValue, err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var e server.ErrorBody
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &e); err != nil || e.Error == "" {
		return fmt.Errorf("remote: %s", resp.Status)
	}
	switch e.Kind {
	case server.KindInvalidPath:
		return fmt.Errorf("%w: %s", types.ErrInvalidPath, e.Error)
	case server.KindInvalidValue:
		return fmt.Errorf("%w: %s", types.ErrInvalidValue, e.Error)
	case server.KindClosed:
		return fmt.Errorf("%w: %s", types.ErrBackendClosed, e.Error)
	}
	return fmt.Errorf("remote: %s: %s", resp.Status, e.Error)
}

// Put implements types.Backend.
func (b *Backend) Put(ctx context.Context, path []string, value any) error {
	if err := b.check(path); err != nil {
		return err
	}
	v, err := types.Normalize(value)
	if err != nil {
		return err
	}
	return b.do(ctx, http.MethodPut, b.url(server.TreePrefix, path), v, nil)
}

// Read implements types.Backend. The server answers null for an absent
// path; stored values are never null.
func (b *Backend) Read(ctx context.Context, path []string) (any, bool, error) {
	if err := b.check(path); err != nil {
		return nil, false, err
	}
	var v any
	if err := b.do(ctx, http.MethodGet, b.url(server.TreePrefix, path), nil, &v); err != nil {
		return nil, false, err
	}
	return v, v != nil, nil
}

// Children implements types.Backend.
func (b *Backend) Children(ctx context.Context, path []string) ([]types.Child, error) {
	if err := b.check(path); err != nil {
		return nil, err
	}
	var body []server.ChildBody
	if err := b.do(ctx, http.MethodGet, b.url(server.TreePrefix, path)+"?shallow=true", nil, &body); err != nil {
		return nil, err
	}
	out := make([]types.Child, 0, len(body))
	for _, c := range body {
		out = append(out, types.Child{Key: c.Key, Value: c.Value})
	}
	return out, nil
}

// Append implements types.Backend. The server generates the key.
func (b *Backend) Append(ctx context.Context, path []string, value any) (string, error) {
	if err := b.check(path); err != nil {
		return "", err
	}
	v, err := types.Normalize(value)
	if err != nil {
		return "", err
	}
	var body server.AppendBody
	if err := b.do(ctx, http.MethodPost, b.url(server.TreePrefix, path), v, &body); err != nil {
		return "", err
	}
	if body.Name == "" {
		return "", errors.New("remote: append returned no key")
	}
	return body.Name, nil
}

// Delete implements types.Backend.
func (b *Backend) Delete(ctx context.Context, path []string) error {
	if err := b.check(path); err != nil {
		return err
	}
	return b.do(ctx, http.MethodDelete, b.url(server.TreePrefix, path), nil, nil)
}

// Close ends every stream. Later calls fail with ErrBackendClosed.
func (b *Backend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	streams := b.streams
	b.streams = map[int]context.CancelFunc{}
	b.mu.Unlock()

	for _, cancel := range streams {
		cancel()
	}
	b.client.CloseIdleConnections()
	return nil
}

var _ types.Backend = (*Backend)(nil)
