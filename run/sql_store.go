package run

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const schema = `CREATE TABLE IF NOT EXISTS sim_runs (
	run_id     TEXT PRIMARY KEY,
	sweep_id   TEXT NOT NULL DEFAULT '',
	seed       BIGINT,
	model      TEXT NOT NULL,
	edge       DOUBLE PRECISION NOT NULL,
	house_p    DOUBLE PRECISION NOT NULL,
	trials     INTEGER NOT NULL,
	wins       INTEGER NOT NULL,
	user_total DOUBLE PRECISION NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// SQLStore keeps run records in the sim_runs table.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the sim_runs table if needed.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sql store: nil db")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create sim_runs: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Append(ctx context.Context, r *Record) error {
	if r == nil || r.Result == nil {
		return fmt.Errorf("append: empty record")
	}
	body, err := json.Marshal(r.Result)
	if err != nil {
		return err
	}
	var seed sql.NullInt64
	if r.Seed != nil {
		seed = sql.NullInt64{Int64: int64(*r.Seed), Valid: true}
	}
	res := r.Result
	_, err = s.db.ExecContext(ctx, `INSERT INTO sim_runs
		(run_id, sweep_id, seed, model, edge, house_p, trials, wins, user_total, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.RunID, r.SweepID, seed, res.Model, res.Edge, res.HouseP, res.Trials, res.Wins,
		res.Ledger.User.Total, string(body), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, runID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, sweep_id, seed, result, created_at
		FROM sim_runs WHERE run_id = $1`, runID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, sweep_id, seed, result, created_at
		FROM sim_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		r    Record
		seed sql.NullInt64
		body []byte
	)
	if err := sc.Scan(&r.RunID, &r.SweepID, &seed, &body, &r.CreatedAt); err != nil {
		return nil, err
	}
	if seed.Valid {
		v := uint64(seed.Int64)
		r.Seed = &v
	}
	if err := json.Unmarshal(body, &r.Result); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", r.RunID, err)
	}
	return &r, nil
}
