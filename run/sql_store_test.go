package run

import (
	"context"
	"errors"
	"os"
	"testing"

	edgesim "github.com/Ashenafi-pixel/house-edge-sim"
)

// Needs a Postgres instance: TEST_DATABASE_URL=postgres://... go test ./run/
func TestSQLStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := edgesim.OpenDB(dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	s, err := NewSQLStore(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	seed := uint64(12)
	rec := NewRecord(testResult(t, 0.4), "sql-test", &seed)
	if err := s.Append(ctx, rec); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM sim_runs WHERE run_id = $1`, rec.RunID)
	})

	got, err := s.Get(ctx, rec.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Result.Ledger != rec.Result.Ledger || got.SweepID != "sql-test" || got.Seed == nil || *got.Seed != 12 {
		t.Errorf("got %+v", got)
	}
	if _, err := s.Get(ctx, "no-such-run"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v want ErrNotFound", err)
	}
	list, err := s.List(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Error("List returned nothing after Append")
	}
}

func TestNewSQLStore_NilDB(t *testing.T) {
	if _, err := NewSQLStore(context.Background(), nil); err == nil {
		t.Error("nil db should error")
	}
}
