package run

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// ResultsStore appends run records to data/sim_runs.json.
type ResultsStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewResultsStore(dataDir string) *ResultsStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ResultsStore{dataDir: dataDir}
}

func (rs *ResultsStore) path() string {
	return filepath.Join(rs.dataDir, "sim_runs.json")
}

// readLocked loads every record. A missing file is an empty store. Caller must hold rs.mu.
func (rs *ResultsStore) readLocked() ([]*Record, error) {
	data, err := os.ReadFile(rs.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*Record
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Append adds a record to the JSON array on disk.
func (rs *ResultsStore) Append(_ context.Context, r *Record) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return err
	}
	list = append(list, r)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(rs.dataDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(rs.path(), data, 0644)
}

// Get returns the record with runID or ErrNotFound.
func (rs *ResultsStore) Get(_ context.Context, runID string) (*Record, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].RunID == runID {
			return list[i], nil
		}
	}
	return nil, ErrNotFound
}

func (rs *ResultsStore) List(_ context.Context, limit int) ([]*Record, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, list[i])
	}
	return out, nil
}
