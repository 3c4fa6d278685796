// Command edgesim runs house-edge simulations and prints their summaries.
//
// With the split model and no -edge it sweeps the edge grid (0.1..1.9 by
// default, 100000 trials each, house_p 0.1). With -edge, or with the simple
// model, it runs once.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	edgesim "github.com/Ashenafi-pixel/house-edge-sim"
	"github.com/Ashenafi-pixel/house-edge-sim/config"
	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
	"github.com/Ashenafi-pixel/house-edge-sim/logger"
	"github.com/Ashenafi-pixel/house-edge-sim/run"
	"github.com/Ashenafi-pixel/house-edge-sim/sim"
)

type options struct {
	model        string
	trials       int
	edge         float64
	single       bool // -edge given
	edgeFrom     float64
	edgeTo       float64
	edgeStep     float64
	houseP       float64
	bankroll     float64
	reserveRatio float64
	seed         uint64
	save         bool
	json         bool
	dataDir      string
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain parses args, runs the simulations and returns the exit code. All
// cleanup runs before it returns.
func runMain(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "edgesim: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("edgesim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := options{dataDir: cfg.DataDir}
	fs.StringVar(&o.model, "model", cfg.Sim.Model, "payout model: split or simple")
	fs.IntVar(&o.trials, "n", cfg.Sim.Trials, "trials per run (model default unless set)")
	fs.Float64Var(&o.edge, "edge", 0, "run once at this edge instead of sweeping")
	fs.Float64Var(&o.edgeFrom, "edge-from", cfg.Sim.EdgeFrom, "sweep start edge")
	fs.Float64Var(&o.edgeTo, "edge-to", cfg.Sim.EdgeTo, "sweep end edge (inclusive)")
	fs.Float64Var(&o.edgeStep, "edge-step", cfg.Sim.EdgeStep, "sweep edge step")
	fs.Float64Var(&o.houseP, "house-p", cfg.Sim.HouseP, "fraction of a lost bet credited to the house")
	fs.Float64Var(&o.bankroll, "bankroll", cfg.Sim.Bankroll, "initial payer balance; caps bets (0 = unlimited)")
	fs.Float64Var(&o.reserveRatio, "reserve-ratio", cfg.Sim.ReserveRatio, "bankroll cover required per unit of payout")
	fs.Uint64Var(&o.seed, "seed", cfg.Sim.Seed, "RNG seed (0 = crypto/rand)")
	fs.BoolVar(&o.save, "save", false, "persist runs (Postgres when DATABASE_URL is set, else the data dir)")
	fs.BoolVar(&o.json, "json", false, "print run records as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	trialsSet := false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "edge":
			o.single = true
		case "n":
			trialsSet = true
		}
	})
	if o.model == gamemath.KindSimple && !o.single {
		o.edge, o.single = cfg.Sim.SimpleEdge, true
	}
	if !trialsSet {
		o.trials = cfg.Sim.TrialsFor(o.model)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "edgesim: %v\n", err)
		return 1
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var store run.Store
	if o.save {
		db, err := edgesim.GetDB()
		if err != nil {
			fmt.Fprintf(stderr, "edgesim: connect db: %v\n", err)
			return 1
		}
		if store, err = run.Open(ctx, db, o.dataDir); err != nil {
			fmt.Fprintf(stderr, "edgesim: open run store: %v\n", err)
			return 1
		}
	}

	if err := execute(ctx, o, zl, store, stdout); err != nil {
		fmt.Fprintf(stderr, "edgesim: %v\n", err)
		return 1
	}
	return 0
}

func source(seed uint64) (gamemath.Source, *uint64) {
	if seed == 0 {
		return gamemath.NewSecure(), nil
	}
	return gamemath.NewSeeded(seed), &seed
}

// execute runs the simulations described by o and writes their reports to out.
// store may be nil.
func execute(ctx context.Context, o options, zl *zap.Logger, store run.Store, out io.Writer) error {
	src, seed := source(o.seed)

	var results []*sim.Result
	sweepID := ""
	if o.single {
		m, err := gamemath.New(o.model, o.edge, o.houseP)
		if err != nil {
			return err
		}
		res, err := sim.Run(ctx, m, src, sim.Options{
			Trials:        o.trials,
			CollectDeltas: m.Kind() == gamemath.KindSimple,
			Bankroll:      o.bankroll,
			ReserveRatio:  o.reserveRatio,
			Logger:        zl,
		})
		if err != nil {
			return err
		}
		results = append(results, res)
	} else {
		var err error
		results, err = sim.Sweep(ctx, o.model, sim.SweepOptions{
			Trials:       o.trials,
			EdgeFrom:     o.edgeFrom,
			EdgeTo:       o.edgeTo,
			EdgeStep:     o.edgeStep,
			HouseP:       o.houseP,
			Bankroll:     o.bankroll,
			ReserveRatio: o.reserveRatio,
			Logger:       zl,
		}, src)
		if err != nil {
			return err
		}
		if len(results) > 1 {
			sweepID = uuid.NewString()
		}
	}

	enc := json.NewEncoder(out)
	for _, res := range results {
		rec := run.NewRecord(res, sweepID, seed)
		if store != nil {
			if err := store.Append(ctx, rec); err != nil {
				return fmt.Errorf("save run: %w", err)
			}
		}
		if o.json {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		if err := sim.WriteReport(out, res); err != nil {
			return err
		}
	}
	return nil
}
