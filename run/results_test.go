package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
	"github.com/Ashenafi-pixel/house-edge-sim/sim"
)

func testResult(t *testing.T, edge float64) *sim.Result {
	t.Helper()
	res, err := sim.Run(context.Background(), gamemath.SplitModel{Edge: edge, HouseP: 0.1}, gamemath.NewSeeded(4), sim.Options{Trials: 50})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestResultsStore_AppendGet(t *testing.T) {
	ctx := context.Background()
	rs := NewResultsStore(t.TempDir())

	seed := uint64(4)
	rec := NewRecord(testResult(t, 0.2), "", &seed)
	if rec.RunID == "" {
		t.Fatal("NewRecord should assign a run id")
	}
	if err := rs.Append(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := rs.Get(ctx, rec.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result.Ledger != rec.Result.Ledger || got.Result.Edge != 0.2 {
		t.Errorf("got %+v want %+v", got.Result, rec.Result)
	}
	if got.Seed == nil || *got.Seed != 4 {
		t.Errorf("seed not persisted: %v", got.Seed)
	}
	if _, err := rs.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing run: err = %v", err)
	}
}

func TestResultsStore_EmptyStore(t *testing.T) {
	rs := NewResultsStore(filepath.Join(t.TempDir(), "nested"))
	list, err := rs.List(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
	if _, err := rs.Get(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v want ErrNotFound", err)
	}
}

func TestResultsStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	rs := NewResultsStore(dir)

	var ids []string
	for _, edge := range []float64{0.1, 0.2, 0.3} {
		rec := NewRecord(testResult(t, edge), "sweep-1", nil)
		ids = append(ids, rec.RunID)
		if err := rs.Append(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	// Reopen to confirm the file round-trips.
	list, err := NewResultsStore(dir).List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].RunID != ids[2] || list[1].RunID != ids[1] {
		t.Fatalf("list order: %+v", list)
	}
	if list[0].SweepID != "sweep-1" {
		t.Errorf("sweep id = %q", list[0].SweepID)
	}

	all, _ := rs.List(ctx, 0)
	if len(all) != 3 {
		t.Errorf("limit 0 should return all, got %d", len(all))
	}
}

func TestResultsStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sim_runs.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	rs := NewResultsStore(dir)
	if err := rs.Append(context.Background(), NewRecord(testResult(t, 0.1), "", nil)); err == nil {
		t.Error("append over a corrupt file should fail rather than drop history")
	}
}

func TestOpen_FallsBackToFile(t *testing.T) {
	s, err := Open(context.Background(), nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*ResultsStore); !ok {
		t.Errorf("Open(nil db) = %T want *ResultsStore", s)
	}
}
