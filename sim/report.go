package sim

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/house-edge-sim/gamemath"
)

// WriteReport prints a run summary. Split runs print edge, house_p and a
// "total min max" line per participant; simple runs print the user total.
// Money is truncated toward zero. Bankroll runs add a final line with the
// initial and final payer balance, the clamped and rejected bet counts and the
// ruin trial (-1 when the payer survived).
func WriteReport(w io.Writer, r *Result) error {
	if r.Model == gamemath.KindSimple {
		total := r.Ledger.User.Total
		if r.Deltas != nil {
			total = r.SumDeltas()
		}
		if _, err := fmt.Fprintln(w, truncate(total)); err != nil {
			return err
		}
		return writeBankroll(w, r.Bankroll)
	}

	lines := []struct {
		label string
		acc   Account
	}{
		{"user   ", r.Ledger.User},
		{"house   ", r.Ledger.House},
		{"reserve ", r.Ledger.Reserve},
	}
	if _, err := fmt.Fprintf(w, "edge %s\nhouse_p %s\n", plain(r.Edge), plain(r.HouseP)); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s%d %d %d\n", l.label, truncate(l.acc.Total), truncate(l.acc.Min), truncate(l.acc.Max)); err != nil {
			return err
		}
	}
	return writeBankroll(w, r.Bankroll)
}

func writeBankroll(w io.Writer, b *Bankroll) error {
	if b == nil {
		return nil
	}
	_, err := fmt.Fprintf(w, "bankroll %d %d clamped %d rejected %d ruin %d\n",
		truncate(b.Initial), truncate(b.Final), b.Clamped, b.Rejected, b.RuinTrial)
	return err
}

func truncate(v float64) int64 {
	return decimal.NewFromFloat(v).IntPart()
}

// plain renders v in its shortest exact decimal form (0.1, not 0.1000000000000000055).
func plain(v float64) string {
	return decimal.NewFromFloat(v).String()
}
