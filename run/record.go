// Package run persists finished simulation runs.
package run

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Ashenafi-pixel/house-edge-sim/sim"
)

var ErrNotFound = errors.New("run not found")

// Record is a stored simulation run. SweepID groups the runs of one sweep.
type Record struct {
	RunID     string      `json:"runId"`
	SweepID   string      `json:"sweepId,omitempty"`
	Seed      *uint64     `json:"seed,omitempty"`
	Result    *sim.Result `json:"result"`
	CreatedAt time.Time   `json:"createdAt"`
}

// NewRecord wraps res with a fresh run ID.
func NewRecord(res *sim.Result, sweepID string, seed *uint64) *Record {
	return &Record{
		RunID:     uuid.NewString(),
		SweepID:   sweepID,
		Seed:      seed,
		Result:    res,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is implemented by ResultsStore (JSON file) and SQLStore (Postgres).
type Store interface {
	Append(ctx context.Context, r *Record) error
	Get(ctx context.Context, runID string) (*Record, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)
}

var (
	_ Store = (*ResultsStore)(nil)
	_ Store = (*SQLStore)(nil)
)

// Open returns a SQLStore when db is set and a ResultsStore under dataDir otherwise.
func Open(ctx context.Context, db *sql.DB, dataDir string) (Store, error) {
	if db == nil {
		return NewResultsStore(dataDir), nil
	}
	s, err := NewSQLStore(ctx, db)
	if err != nil {
		return nil, err
	}
	return s, nil
}
