// Package strategy decides which positions to close and which to open.
package strategy

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"TickTrader/internal/broker"
	"TickTrader/internal/history"
	"TickTrader/internal/id"
	"TickTrader/internal/metrics"
	"TickTrader/internal/model"
)

// Params holds the thresholds of the allocation rules.
type Params struct {
	LongEntry       float64 // open longs strictly above
	ShortEntry      float64 // open shorts strictly below
	LongHold        float64 // keep longs at or above
	ShortHold       float64 // keep shorts at or below
	CapitalReserve  float64 // never spent, covers commissions
	MinTradeCapital float64 // smallest spendable amount worth a trade
	MinSamples      int     // window length required before acting in basic mode
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		LongEntry:       0.6,
		ShortEntry:      0.4,
		LongHold:        0.55,
		ShortHold:       0.45,
		CapitalReserve:  50_000_000,
		MinTradeCapital: 25_000_000,
		MinSamples:      history.Capacity,
	}
}

// Candidate is an instrument's latest snapshot with the size of its window.
type Candidate struct {
	Snapshot model.Snapshot
	Samples  int
}

// Skip explains why an instrument was left alone.
type Skip struct {
	Symbol string
	Reason string
}

// Result is the outcome of one Sell or Buy phase.
type Result struct {
	Orders []model.Order
	Skips  []Skip
	Halted bool  // a pass stopped early on the capital floor
	Err    error // failed order submissions, combined
}

// Failed returns the orders the broker rejected.
func (r Result) Failed() []model.Order {
	var out []model.Order
	for _, o := range r.Orders {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Policy applies the sell and buy rules through a broker.
type Policy struct {
	Params   Params
	Advanced bool
	Broker   broker.Broker
	Log      zerolog.Logger
	Now      func() time.Time
}

// NewPolicy creates a Policy. advanced disables the window-length checks.
func NewPolicy(p Params, advanced bool, b broker.Broker, log zerolog.Logger) *Policy {
	return &Policy{
		Params:   p,
		Advanced: advanced,
		Broker:   b,
		Log:      log.With().Str("component", "policy").Logger(),
		Now:      time.Now,
	}
}

// Rank orders candidates by descending forecast. Ties keep their input order.
func Rank(cands []Candidate) []Candidate {
	out := slices.Clone(cands)
	slices.SortStableFunc(out, func(a, b Candidate) int {
		return cmp.Compare(b.Snapshot.Forecast, a.Snapshot.Forecast)
	})
	return out
}

func (p *Policy) thinHistory(c Candidate) bool {
	return !p.Advanced && c.Samples < p.Params.MinSamples
}

func (r *Result) skip(sym, reason string) {
	r.Skips = append(r.Skips, Skip{Symbol: sym, Reason: reason})
}

func (p *Policy) submit(ctx context.Context, r *Result, side model.Side, s model.Snapshot, shares int64, price float64) {
	o := model.Order{
		ID:     id.Order(),
		Symbol: s.Symbol,
		Side:   side,
		Shares: shares,
		Price:  price,
		Time:   p.Now(),
	}

	var err error
	switch side {
	case model.SideBuy:
		err = p.Broker.Buy(ctx, s.Symbol, shares)
	case model.SideSell:
		err = p.Broker.Sell(ctx, s.Symbol, shares)
	case model.SideShort:
		err = p.Broker.Short(ctx, s.Symbol, shares)
	case model.SideCover:
		err = p.Broker.Cover(ctx, s.Symbol, shares)
	}

	metrics.OrdersTotal.WithLabelValues(s.Symbol, string(side)).Inc()
	if err != nil {
		o.Err = err
		r.Err = multierr.Append(r.Err, err)
		metrics.OrderFailuresTotal.WithLabelValues(s.Symbol, string(side)).Inc()
		p.Log.Error().Err(err).Str("symbol", s.Symbol).Str("side", string(side)).Int64("shares", shares).Msg("order failed")
	}
	r.Orders = append(r.Orders, o)
}
