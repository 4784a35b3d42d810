package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// JSONStore keeps one indented JSON file per session in a directory.
type JSONStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONStore creates dir if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("record: create directory: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

// Dir returns the directory records are written to.
func (s *JSONStore) Dir() string { return s.dir }

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes r to <dir>/<session_id>.json.
func (s *JSONStore) Save(ctx context.Context, r *Record) error {
	if r.SessionID == "" {
		return ErrNoID
	}
	if strings.ContainsAny(r.SessionID, `/\`) {
		return fmt.Errorf("record: invalid session id %q", r.SessionID)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("record: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(r.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("record: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("record: write: %w", err)
	}
	return nil
}

// Get reads the record for id.
func (s *JSONStore) Get(ctx context.Context, id string) (*Record, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("record: read: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("record: parse %s: %w", id, err)
	}
	return &r, nil
}

// List reads every record in the directory. Unreadable files are skipped.
func (s *JSONStore) List(ctx context.Context, limit int) ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("record: list: %w", err)
	}

	var out []*Record
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		r, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time().After(out[j].Time())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op.
func (s *JSONStore) Close() error { return nil }

var _ Store = (*JSONStore)(nil)
