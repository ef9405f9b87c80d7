package memdb

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/docket/internal/tree"
)

// line is one persisted entry: a record, or a top-level value that is not
// a collection.
type line struct {
	Path  []string `json:"path"`
	Value any      `json:"value"`
}

// flatten splits a tree into one line per record in key order.
func flatten(root map[string]any) []line {
	var out []line
	for _, col := range tree.SortedKeys(root) {
		m, ok := root[col].(map[string]any)
		if !ok {
			out = append(out, line{Path: []string{col}, Value: root[col]})
			continue
		}
		for _, key := range tree.SortedKeys(m) {
			out = append(out, line{Path: []string{col, key}, Value: m[key]})
		}
	}
	return out
}

// readJSONL loads a snapshot file. A missing file yields an empty tree;
// malformed lines are skipped.
func readJSONL(path string) (map[string]any, int, error) {
	root := map[string]any{}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return root, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	skipped := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(b, &l); err != nil || len(l.Path) == 0 || tree.ValidatePath(l.Path) != nil {
			skipped++
			continue
		}
		root = tree.Set(root, l.Path, l.Value)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning %s: %w", path, err)
	}
	return root, skipped, nil
}

// writeJSONL atomically replaces path using the temp-file, fsync, rename
// pattern.
func writeJSONL(path string, lines []line) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".docket-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%s: %w", step, err)
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return fail("writing record", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail("flushing buffer", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("syncing temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
