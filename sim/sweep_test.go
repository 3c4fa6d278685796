package sim

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
)

func TestEdges_DefaultGrid(t *testing.T) {
	edges, err := Edges(DefaultSweep.EdgeFrom, DefaultSweep.EdgeTo, DefaultSweep.EdgeStep)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 19 {
		t.Fatalf("got %d edges want 19", len(edges))
	}
	for i, e := range edges {
		want := float64(i+1) / 10
		if e != want {
			t.Errorf("edge %d = %v want %v", i, e, want)
		}
	}
}

func TestEdges_Invalid(t *testing.T) {
	cases := [][3]float64{
		{0.1, 1.9, 0},
		{0.1, 1.9, -0.1},
		{2, 1, 0.1},
		{0, 1e9, 1e-3},
	}
	for _, c := range cases {
		if _, err := Edges(c[0], c[1], c[2]); !errors.Is(err, ErrInvalidSweep) {
			t.Errorf("Edges(%v): err = %v", c, err)
		}
	}
	edges, err := Edges(0.5, 0.5, 0.1)
	if err != nil || len(edges) != 1 || edges[0] != 0.5 {
		t.Errorf("single point: %v %v", edges, err)
	}
}

func TestSweep_OneRunPerEdge(t *testing.T) {
	opts := SweepOptions{Trials: 200, EdgeFrom: 0.1, EdgeTo: 0.5, EdgeStep: 0.1, HouseP: 0.1}
	results, err := Sweep(context.Background(), gamemath.KindSplit, opts, gamemath.NewSeeded(8))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results want 5", len(results))
	}
	for i, r := range results {
		if want := float64(i+1) / 10; r.Edge != want {
			t.Errorf("result %d edge %v want %v", i, r.Edge, want)
		}
		if r.HouseP != 0.1 || r.Trials != 200 || r.Model != gamemath.KindSplit {
			t.Errorf("result %d: %+v", i, r)
		}
	}
}

func TestSweep_TotalTrialsCap(t *testing.T) {
	// 1000 points x 10 trials is 10000 trials in total.
	opts := SweepOptions{Trials: 10, EdgeFrom: 0, EdgeTo: 0.999, EdgeStep: 0.001, HouseP: 0.1, MaxTotalTrials: 9_999}
	if _, err := Sweep(context.Background(), gamemath.KindSplit, opts, gamemath.NewSeeded(1)); !errors.Is(err, ErrInvalidSweep) {
		t.Fatalf("over the total cap: err = %v want ErrInvalidSweep", err)
	}

	opts.MaxTotalTrials = 10_000
	results, err := Sweep(context.Background(), gamemath.KindSplit, opts, gamemath.NewSeeded(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1000 {
		t.Errorf("got %d results want 1000", len(results))
	}
}

func TestSweep_Bankroll(t *testing.T) {
	opts := SweepOptions{Trials: 100, EdgeFrom: 0.1, EdgeTo: 0.2, EdgeStep: 0.1, HouseP: 0.1, Bankroll: 2000, ReserveRatio: 2}
	results, err := Sweep(context.Background(), gamemath.KindSplit, opts, gamemath.NewSeeded(4))
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Bankroll == nil || r.Bankroll.Initial != 2000 || r.Bankroll.Ratio != 2 {
			t.Errorf("result %d bankroll %+v", i, r.Bankroll)
		}
	}
}

func TestSweep_InvalidHouseP(t *testing.T) {
	opts := SweepOptions{Trials: 10, EdgeFrom: 0.1, EdgeTo: 0.2, EdgeStep: 0.1, HouseP: -1}
	_, err := Sweep(context.Background(), gamemath.KindSplit, opts, gamemath.NewSeeded(1))
	if !errors.Is(err, gamemath.ErrInvalidHouseP) {
		t.Errorf("err = %v want ErrInvalidHouseP", err)
	}
}

func TestWriteReport_Split(t *testing.T) {
	r := &Result{
		Model:  gamemath.KindSplit,
		Edge:   0.3,
		HouseP: 0.1,
		Ledger: Ledger{
			User:    Account{Total: -1234.9, Min: -2000.5, Max: 15.7},
			House:   Account{Total: 99.99, Min: 0, Max: 99.99},
			Reserve: Account{Total: 1134.91, Min: -0.5, Max: 2000.2},
		},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"edge 0.3",
		"house_p 0.1",
		"user   -1234 -2000 15",
		"house   99 0 99",
		"reserve 1134 0 2000",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteReport_Simple(t *testing.T) {
	r := &Result{
		Model:  gamemath.KindSimple,
		Deltas: []float64{400, -50, -50},
		Ledger: Ledger{User: Account{Total: 300}},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "300\n" {
		t.Errorf("report = %q want %q", buf.String(), "300\n")
	}
}

func TestWriteReport_EmptyRun(t *testing.T) {
	res, err := Run(context.Background(), gamemath.SplitModel{Edge: 0.2, HouseP: 0.1}, gamemath.NewSeeded(1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "user   0 0 0\n") || !strings.Contains(buf.String(), "reserve 0 0 0\n") {
		t.Errorf("empty run report:\n%s", buf.String())
	}
}

func TestWriteReport_Bankroll(t *testing.T) {
	r := &Result{
		Model:    gamemath.KindSimple,
		Ledger:   Ledger{User: Account{Total: -12.5}},
		Bankroll: &Bankroll{Initial: 1000, Ratio: 1, Final: 1012.5, Clamped: 3, Rejected: 0, RuinTrial: -1},
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		t.Fatal(err)
	}
	want := "-12\nbankroll 1000 1012 clamped 3 rejected 0 ruin -1\n"
	if buf.String() != want {
		t.Errorf("report = %q want %q", buf.String(), want)
	}
}
