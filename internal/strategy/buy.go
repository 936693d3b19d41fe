package strategy

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"go.uber.org/multierr"

	"TickTrader/internal/model"
)

// Buy opens longs on strong bullish forecasts, then shorts on strong bearish
// ones. Reaching the capital floor ends the whole buy phase, so a halted long
// pass skips the short pass.
func (p *Policy) Buy(ctx context.Context, cands []Candidate) Result {
	var r Result

	var longs, shorts []Candidate
	for _, c := range cands {
		if c.Snapshot.Forecast > p.Params.LongEntry {
			longs = append(longs, c)
		}
		if c.Snapshot.Forecast < p.Params.ShortEntry {
			shorts = append(shorts, c)
		}
	}
	slices.SortStableFunc(longs, func(a, b Candidate) int {
		return cmp.Compare(b.Snapshot.Forecast, a.Snapshot.Forecast)
	})
	slices.SortStableFunc(shorts, func(a, b Candidate) int {
		return cmp.Compare(a.Snapshot.Forecast, b.Snapshot.Forecast)
	})

	p.buyPass(ctx, &r, longs, model.SideBuy)
	if r.Halted {
		return r
	}
	p.buyPass(ctx, &r, shorts, model.SideShort)
	return r
}

func (p *Policy) entrySignal(side model.Side, f float64) bool {
	if side == model.SideShort {
		return f < p.Params.ShortEntry
	}
	return f > p.Params.LongEntry
}

func (p *Policy) buyPass(ctx context.Context, r *Result, cands []Candidate, side model.Side) {
	for _, c := range cands {
		s := c.Snapshot
		if p.thinHistory(c) {
			r.skip(s.Symbol, "short history")
			continue
		}
		if !p.entrySignal(side, s.Forecast) {
			continue
		}

		free, err := p.Broker.FreeCapital(ctx)
		if err != nil {
			p.Log.Error().Err(err).Str("side", string(side)).Msg("free capital unavailable, pass stopped")
			r.Err = multierr.Append(r.Err, fmt.Errorf("free capital: %w", err))
			return
		}
		budget := free - p.Params.CapitalReserve
		if budget < p.Params.MinTradeCapital {
			p.Log.Info().Str("side", string(side)).Float64("budget", budget).Msg("capital under trade floor, pass stopped")
			r.Halted = true
			return
		}

		price := s.AskPrice
		if side == model.SideShort {
			price = s.BidPrice
		}
		shares := Size(s.Room(), budget, price)
		if shares <= 0 {
			r.skip(s.Symbol, "nothing to buy")
			continue
		}

		p.Log.Info().Str("symbol", s.Symbol).Str("side", string(side)).Int64("shares", shares).
			Float64("price", price).Float64("notional", float64(shares)*price).Msg("opening position")
		p.submit(ctx, r, side, s, shares, price)
	}
}

// Size returns min(room, floor(budget/price)), never negative.
func Size(room int64, budget, price float64) int64 {
	if room <= 0 || budget <= 0 || price <= 0 {
		return 0
	}
	afford := math.Floor(budget / price)
	if afford >= float64(room) {
		return room
	}
	return int64(afford)
}
