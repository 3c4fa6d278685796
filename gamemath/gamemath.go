package gamemath

import (
	"errors"
	"fmt"
	"math"
)

// Model kinds.
const (
	KindSplit  = "split"
	KindSimple = "simple"
)

var (
	ErrInvalidHouseP = errors.New("house_p must be within [0, 1]")
	ErrInvalidEdge   = errors.New("invalid edge")
	ErrUnknownModel  = errors.New("unknown model")
)

// Outcome is the money moved by one trial. User, House and Reserve are the
// signed deltas of each participant.
type Outcome struct {
	Win     bool    `json:"win"`
	User    float64 `json:"user"`
	House   float64 `json:"house"`
	Reserve float64 `json:"reserve"`
}

// Sum returns the net of all three deltas.
func (o Outcome) Sum() float64 {
	return o.User + o.House + o.Reserve
}

// Params are the tunable inputs of a model as reported with run results.
// HouseP is 0 for models without a house share.
type Params struct {
	Edge   float64 `json:"edge"`
	HouseP float64 `json:"houseP"`
}

// Model is a payout model: how likely a bet at a given multiplier wins and
// how the bet is redistributed on either branch.
type Model interface {
	Kind() string
	Params() Params
	WinProbability(multiplier float64) float64
	Settle(multiplier, bet float64, win bool) Outcome
	Validate() error
}

// Play runs one trial: a single draw from src decides win (draw < p) or lose.
func Play(m Model, src Source, multiplier, bet float64) Outcome {
	win := src.Float64() < m.WinProbability(multiplier)
	return m.Settle(multiplier, bet, win)
}

// SplitModel routes a lost bet to the house and reserve accounts by HouseP
// and pays wins out of the reserve. Win probability is 1/(multiplier+edge).
type SplitModel struct {
	Edge   float64 `json:"edge"`
	HouseP float64 `json:"houseP"`
}

func (m SplitModel) Kind() string { return KindSplit }

func (m SplitModel) Params() Params { return Params{Edge: m.Edge, HouseP: m.HouseP} }

// ReserveP is the share of a lost bet credited to the reserve.
func (m SplitModel) ReserveP() float64 {
	return 1 - m.HouseP
}

func (m SplitModel) WinProbability(multiplier float64) float64 {
	return 1 / (multiplier + m.Edge)
}

func (m SplitModel) Settle(multiplier, bet float64, win bool) Outcome {
	if win {
		return Outcome{
			Win:     true,
			User:    (multiplier - 1) * bet,
			House:   0,
			Reserve: (1 - multiplier) * bet,
		}
	}
	return Outcome{
		User:    -bet,
		House:   bet * m.HouseP,
		Reserve: bet * m.ReserveP(),
	}
}

func (m SplitModel) Validate() error {
	if math.IsNaN(m.HouseP) || m.HouseP < 0 || m.HouseP > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidHouseP, m.HouseP)
	}
	if math.IsNaN(m.Edge) || math.IsInf(m.Edge, 0) || m.Edge < 0 {
		return fmt.Errorf("%w: split edge must be >= 0, got %v", ErrInvalidEdge, m.Edge)
	}
	return nil
}

// SimpleModel is the two-way game: the house is the only counterparty.
// Win probability is (1-edge)/(multiplier+1).
type SimpleModel struct {
	Edge float64 `json:"edge"`
}

func (m SimpleModel) Kind() string { return KindSimple }

func (m SimpleModel) Params() Params { return Params{Edge: m.Edge} }

func (m SimpleModel) WinProbability(multiplier float64) float64 {
	return (1 - m.Edge) / (multiplier + 1)
}

func (m SimpleModel) Settle(multiplier, bet float64, win bool) Outcome {
	user := -bet
	if win {
		user = (multiplier - 1) * bet
	}
	return Outcome{Win: win, User: user, House: -user}
}

func (m SimpleModel) Validate() error {
	if math.IsNaN(m.Edge) || m.Edge < 0 || m.Edge >= 1 {
		return fmt.Errorf("%w: simple edge must be within [0, 1), got %v", ErrInvalidEdge, m.Edge)
	}
	return nil
}

// New builds a model of the given kind. houseP is ignored by the simple model.
func New(kind string, edge, houseP float64) (Model, error) {
	var m Model
	switch kind {
	case KindSplit, "":
		m = SplitModel{Edge: edge, HouseP: houseP}
	case KindSimple:
		m = SimpleModel{Edge: edge}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, kind)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
