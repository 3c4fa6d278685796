package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
)

var ErrInvalidSweep = errors.New("invalid sweep")

// maxSweepPoints caps the edge grid so a tiny step cannot run away.
const maxSweepPoints = 10_000

// SweepOptions describe a parameter sweep over the edge, one run per point.
// MaxTotalTrials > 0 caps points*Trials; a larger sweep is rejected before
// any run starts. Bankroll and ReserveRatio apply to every run.
type SweepOptions struct {
	Trials         int
	EdgeFrom       float64
	EdgeTo         float64
	EdgeStep       float64
	HouseP         float64
	Ranges         Ranges
	Bankroll       float64
	ReserveRatio   float64
	MaxTotalTrials int
	Logger         *zap.Logger
}

// DefaultSweep is 19 runs of 100000 trials over edge 0.1..1.9 with a 10% house fee.
var DefaultSweep = SweepOptions{
	Trials:   100_000,
	EdgeFrom: 0.1,
	EdgeTo:   1.9,
	EdgeStep: 0.1,
	HouseP:   0.1,
}

// Edges returns the grid from, from+step, ... up to and including to.
// Points are computed in decimal so 0.1 steps land exactly on 0.3, 0.7, ...
func Edges(from, to, step float64) ([]float64, error) {
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite bound %v", ErrInvalidSweep, v)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: step must be > 0, got %v", ErrInvalidSweep, step)
	}
	if from > to {
		return nil, fmt.Errorf("%w: from %v is above to %v", ErrInvalidSweep, from, to)
	}
	dFrom := decimal.NewFromFloat(from)
	dTo := decimal.NewFromFloat(to)
	dStep := decimal.NewFromFloat(step)

	var out []float64
	for e := dFrom; e.LessThanOrEqual(dTo); e = e.Add(dStep) {
		if len(out) == maxSweepPoints {
			return nil, fmt.Errorf("%w: more than %d points", ErrInvalidSweep, maxSweepPoints)
		}
		out = append(out, e.InexactFloat64())
	}
	return out, nil
}

// Sweep runs one simulation per edge on the grid and returns the results in
// grid order. All runs share src.
func Sweep(ctx context.Context, kind string, opts SweepOptions, src gamemath.Source) ([]*Result, error) {
	edges, err := Edges(opts.EdgeFrom, opts.EdgeTo, opts.EdgeStep)
	if err != nil {
		return nil, err
	}
	if err := checkTotal(len(edges), opts.Trials, opts.MaxTotalTrials); err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(edges))
	for _, edge := range edges {
		m, err := gamemath.New(kind, edge, opts.HouseP)
		if err != nil {
			return nil, fmt.Errorf("edge %v: %w", edge, err)
		}
		res, err := Run(ctx, m, src, Options{
			Trials:       opts.Trials,
			Ranges:       opts.Ranges,
			Bankroll:     opts.Bankroll,
			ReserveRatio: opts.ReserveRatio,
			Logger:       opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("edge %v: %w", edge, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// checkTotal rejects a sweep of points runs of trials each when it would play
// more than limit trials in total. limit <= 0 disables the check.
func checkTotal(points, trials, limit int) error {
	if limit <= 0 || trials <= 0 {
		return nil
	}
	if points > limit/trials {
		return fmt.Errorf("%w: %d points x %d trials exceeds limit %d", ErrInvalidSweep, points, trials, limit)
	}
	return nil
}
