package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Error kinds carried in error responses so clients can restore the
// sentinel errors.
const (
	KindInvalidPath  = "invalid_path"
	KindInvalidValue = "invalid_value"
	KindClosed       = "closed"
	KindInternal     = "internal"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// ChildBody is one element of a shallow read.
type ChildBody struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// AppendBody answers an append with the generated key.
type AppendBody struct {
	Name string `json:"name"`
}

// EventBody is the data of a "put" stream event.
type EventBody struct {
	Exists bool `json:"exists"`
	Data   any  `json:"data"`
}

// splitPath turns the escaped request path after prefix into segments.
func splitPath(c *gin.Context, prefix string) ([]string, error) {
	raw := strings.TrimPrefix(c.Request.URL.EscapedPath(), prefix)
	raw = strings.Trim(raw, "/")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "/")
	for i, p := range parts {
		seg, err := url.PathUnescape(p)
		if err != nil || seg == "" {
			return nil, fmt.Errorf("%w: segment %q", types.ErrInvalidPath, p)
		}
		parts[i] = seg
	}
	return parts, nil
}

func (s *Server) fail(c *gin.Context, err error) {
	status, kind := http.StatusInternalServerError, KindInternal
	switch {
	case errors.Is(err, types.ErrInvalidPath), errors.Is(err, types.ErrInvalidKey):
		status, kind = http.StatusBadRequest, KindInvalidPath
	case errors.Is(err, types.ErrInvalidValue):
		status, kind = http.StatusBadRequest, KindInvalidValue
	case errors.Is(err, types.ErrBackendClosed):
		status, kind = http.StatusServiceUnavailable, KindClosed
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("backend error", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: err.Error(), Kind: kind})
}

func (s *Server) read(c *gin.Context) {
	path, err := splitPath(c, TreePrefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()

	if c.Query("shallow") == "true" {
		kids, err := s.backend.Children(ctx, path)
		if err != nil {
			s.fail(c, err)
			return
		}
		out := make([]ChildBody, 0, len(kids))
		for _, k := range kids {
			out = append(out, ChildBody{Key: k.Key, Value: k.Value})
		}
		c.JSON(http.StatusOK, out)
		return
	}

	v, ok, err := s.backend.Read(ctx, path)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		v = nil
	}
	c.JSON(http.StatusOK, v)
}

func readBody(c *gin.Context) (any, error) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidValue, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidValue, err)
	}
	return v, nil
}

func (s *Server) put(c *gin.Context) {
	path, err := splitPath(c, TreePrefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	v, err := readBody(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.backend.Put(c.Request.Context(), path, v); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) appendChild(c *gin.Context) {
	path, err := splitPath(c, TreePrefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	v, err := readBody(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	key, err := s.backend.Append(c.Request.Context(), path, v)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AppendBody{Name: key})
}

func (s *Server) remove(c *gin.Context) {
	path, err := splitPath(c, TreePrefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.backend.Delete(c.Request.Context(), path); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// stream sends the current value as a "put" event and another after every
// change. Only the latest snapshot is kept, so a slow reader skips
// intermediate states but always receives the last one.
func (s *Server) stream(c *gin.Context) {
	path, err := splitPath(c, StreamPrefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	ctx := c.Request.Context()

	var (
		mu     sync.Mutex
		latest types.Snapshot
	)
	notify := make(chan struct{}, 1)
	sub, err := s.backend.Watch(ctx, path, func(snap types.Snapshot) {
		mu.Lock()
		latest = snap
		mu.Unlock()
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	defer sub.Cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("keep-alive", "")
			return true
		case <-notify:
			mu.Lock()
			snap := latest
			mu.Unlock()
			c.SSEvent("put", EventBody{Exists: snap.Exists, Data: snap.Value})
			return true
		}
	})
}
