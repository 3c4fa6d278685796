// Package sim runs Monte Carlo trials of a payout model and aggregates the
// money each participant gains or loses over the run.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
)

var (
	ErrInvalidTrials   = errors.New("trial count must be >= 0")
	ErrInvalidRange    = errors.New("invalid draw range")
	ErrInvalidBankroll = errors.New("invalid bankroll")
)

// cancelCheckEvery is how many trials run between context checks. Power of two.
const cancelCheckEvery = 4096

// Ranges bound the per-trial draws. Both ranges are half-open: [Min, Max).
type Ranges struct {
	MultiplierMin int `json:"multiplierMin"`
	MultiplierMax int `json:"multiplierMax"`
	BetMin        int `json:"betMin"`
	BetMax        int `json:"betMax"`
}

// SplitRanges are the draw ranges used with the split model.
var SplitRanges = Ranges{MultiplierMin: 2, MultiplierMax: 10, BetMin: 1, BetMax: 1000}

// SimpleRanges are the draw ranges used with the simple model.
var SimpleRanges = Ranges{MultiplierMin: 2, MultiplierMax: 100, BetMin: 1, BetMax: 1000}

// DefaultRanges returns the draw ranges for a model kind.
func DefaultRanges(kind string) Ranges {
	if kind == gamemath.KindSimple {
		return SimpleRanges
	}
	return SplitRanges
}

func (r Ranges) Validate() error {
	if r.MultiplierMin <= 1 {
		return fmt.Errorf("%w: multiplier min must be > 1, got %d", ErrInvalidRange, r.MultiplierMin)
	}
	if r.MultiplierMax <= r.MultiplierMin {
		return fmt.Errorf("%w: multiplier range [%d, %d) is empty", ErrInvalidRange, r.MultiplierMin, r.MultiplierMax)
	}
	if r.BetMin <= 0 {
		return fmt.Errorf("%w: bet min must be > 0, got %d", ErrInvalidRange, r.BetMin)
	}
	if r.BetMax <= r.BetMin {
		return fmt.Errorf("%w: bet range [%d, %d) is empty", ErrInvalidRange, r.BetMin, r.BetMax)
	}
	return nil
}

// Account tracks one participant: the running total and the lowest and
// highest values the total reached. All start at zero.
type Account struct {
	Total float64 `json:"total"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Add applies delta to the total and widens Min/Max to cover it.
func (a *Account) Add(delta float64) {
	a.Total += delta
	if a.Total < a.Min {
		a.Min = a.Total
	}
	if a.Total > a.Max {
		a.Max = a.Total
	}
}

// Ledger holds the accounts of the three participants.
type Ledger struct {
	User    Account `json:"user"`
	House   Account `json:"house"`
	Reserve Account `json:"reserve"`
}

func (l *Ledger) Add(o gamemath.Outcome) {
	l.User.Add(o.User)
	l.House.Add(o.House)
	l.Reserve.Add(o.Reserve)
}

// Bankroll reports a run played against a funded payer: the reserve for
// the split model, the house for the simple model. Final is the payer's
// balance after the run. RuinTrial is -1 unless Ruined.
type Bankroll struct {
	Initial   float64 `json:"initial"`
	Ratio     float64 `json:"ratio"`
	Final     float64 `json:"final"`
	Clamped   int     `json:"clamped"`
	Rejected  int     `json:"rejected"`
	Ruined    bool    `json:"ruined"`
	RuinTrial int     `json:"ruinTrial"`
}

// Result is the outcome of one simulation run. Trials counts attempted
// trials, including any a bankroll rejected.
type Result struct {
	Model    string        `json:"model"`
	Edge     float64       `json:"edge"`
	HouseP   float64       `json:"houseP"`
	Trials   int           `json:"trials"`
	Wins     int           `json:"wins"`
	Ranges   Ranges        `json:"ranges"`
	Ledger   Ledger        `json:"ledger"`
	Bankroll *Bankroll     `json:"bankroll,omitempty"`
	Deltas   []float64     `json:"deltas,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Played is the number of trials that were actually settled.
func (r *Result) Played() int {
	if r.Bankroll == nil {
		return r.Trials
	}
	return r.Trials - r.Bankroll.Rejected
}

// SumDeltas returns the sum of the collected per-trial user deltas.
func (r *Result) SumDeltas() float64 {
	var sum float64
	for _, d := range r.Deltas {
		sum += d
	}
	return sum
}

// WinRate is the observed fraction of winning trials among those played,
// 0 for an empty run.
func (r *Result) WinRate() float64 {
	played := r.Played()
	if played == 0 {
		return 0
	}
	return float64(r.Wins) / float64(played)
}

// Trial is one settled draw as seen by an Observer.
type Trial struct {
	Index      int
	Multiplier float64
	Bet        float64
	Outcome    gamemath.Outcome
}

// Options configure a run. A zero Ranges selects DefaultRanges for the model.
//
// Bankroll > 0 funds the payer account with that balance and caps every bet
// at floor(balance / (multiplier * ReserveRatio)). Larger bets are clamped to
// the cap; a trial whose cap is below Ranges.BetMin is rejected. Once the
// balance cannot cover a minimum bet at the lowest multiplier the payer is
// ruined and the remaining trials are rejected. ReserveRatio defaults to 1.
type Options struct {
	Trials        int
	Ranges        Ranges
	CollectDeltas bool
	Bankroll      float64
	ReserveRatio  float64
	// Observer, if set, is called after every settled trial with the updated ledger.
	Observer func(t Trial, l Ledger)
	Logger   *zap.Logger
}

// MaxBet is the largest whole bet a payer holding balance may accept at
// multiplier under the given reserve ratio.
func MaxBet(balance, multiplier, ratio float64) float64 {
	if balance <= 0 {
		return 0
	}
	return math.Floor(balance / (multiplier * ratio))
}

func newBankroll(opts Options) (*Bankroll, error) {
	if math.IsNaN(opts.Bankroll) || math.IsInf(opts.Bankroll, 0) || opts.Bankroll < 0 {
		return nil, fmt.Errorf("%w: bankroll must be finite and >= 0, got %v", ErrInvalidBankroll, opts.Bankroll)
	}
	if opts.Bankroll == 0 {
		return nil, nil
	}
	ratio := opts.ReserveRatio
	if ratio == 0 {
		ratio = 1
	}
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio < 1 {
		return nil, fmt.Errorf("%w: reserve ratio must be >= 1, got %v", ErrInvalidBankroll, opts.ReserveRatio)
	}
	return &Bankroll{Initial: opts.Bankroll, Ratio: ratio, Final: opts.Bankroll, RuinTrial: -1}, nil
}

// payer is the account that funds wins for a model kind.
func payer(kind string, l *Ledger) *Account {
	if kind == gamemath.KindSimple {
		return &l.House
	}
	return &l.Reserve
}

// Run draws opts.Trials multiplier/bet pairs from src, plays each against m
// and accumulates the deltas.
func Run(ctx context.Context, m gamemath.Model, src gamemath.Source, opts Options) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if opts.Trials < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTrials, opts.Trials)
	}
	ranges := opts.Ranges
	if ranges == (Ranges{}) {
		ranges = DefaultRanges(m.Kind())
	}
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	bank, err := newBankroll(opts)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	params := m.Params()
	res := &Result{
		Model:    m.Kind(),
		Edge:     params.Edge,
		HouseP:   params.HouseP,
		Trials:   opts.Trials,
		Ranges:   ranges,
		Bankroll: bank,
	}
	funds := payer(res.Model, &res.Ledger)
	minBet := float64(ranges.BetMin)
	if opts.CollectDeltas {
		res.Deltas = make([]float64, 0, opts.Trials)
	}

	start := time.Now()
	for i := 0; i < opts.Trials; i++ {
		if i&(cancelCheckEvery-1) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if bank != nil && MaxBet(bank.Initial+funds.Total, float64(ranges.MultiplierMin), bank.Ratio) < minBet {
			bank.Ruined, bank.RuinTrial = true, i
			bank.Rejected += opts.Trials - i
			log.Warn("bankroll ruined",
				zap.Int("trial", i),
				zap.Float64("balance", bank.Initial+funds.Total),
			)
			break
		}
		multiplier := float64(gamemath.Uniform(src, ranges.MultiplierMin, ranges.MultiplierMax))
		bet := float64(gamemath.Uniform(src, ranges.BetMin, ranges.BetMax))
		if bank != nil {
			limit := MaxBet(bank.Initial+funds.Total, multiplier, bank.Ratio)
			if limit < minBet {
				bank.Rejected++
				continue
			}
			if bet > limit {
				bet = limit
				bank.Clamped++
			}
		}
		o := gamemath.Play(m, src, multiplier, bet)
		logTrial(log, o)

		if o.Win {
			res.Wins++
		}
		res.Ledger.Add(o)
		if opts.CollectDeltas {
			res.Deltas = append(res.Deltas, o.User)
		}
		if opts.Observer != nil {
			opts.Observer(Trial{Index: i, Multiplier: multiplier, Bet: bet, Outcome: o}, res.Ledger)
		}
	}
	res.Duration = time.Since(start)
	if bank != nil {
		bank.Final = bank.Initial + funds.Total
	}

	log.Info("simulation finished",
		zap.String("model", res.Model),
		zap.Float64("edge", res.Edge),
		zap.Float64("house_p", res.HouseP),
		zap.Int("trials", res.Trials),
		zap.Int("wins", res.Wins),
		zap.Float64("user_total", res.Ledger.User.Total),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

func logTrial(log *zap.Logger, o gamemath.Outcome) {
	msg := "Lose!"
	if o.Win {
		msg = "Win!"
	}
	if ce := log.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(
			zap.Float64("user", o.User),
			zap.Float64("house", o.House),
			zap.Float64("reserve", o.Reserve),
		)
	}
}
