package strategy

import (
	"context"

	"TickTrader/internal/model"
)

// Sell closes positions whose forecast no longer supports them. With
// liquidate set every open long and short is closed regardless of forecast
// or history length.
func (p *Policy) Sell(ctx context.Context, cands []Candidate, liquidate bool) Result {
	var r Result

	for _, c := range cands {
		s := c.Snapshot
		if s.LongShares < 1 {
			continue
		}
		if s.Forecast >= p.Params.LongHold && !liquidate {
			continue
		}
		if p.thinHistory(c) && !liquidate {
			p.Log.Info().Str("symbol", s.Symbol).Int64("shares", s.LongShares).Int("samples", c.Samples).
				Msg("would sell long shares but history is too short")
			r.skip(s.Symbol, "short history")
			continue
		}
		p.Log.Warn().Str("symbol", s.Symbol).Int64("shares", s.LongShares).Float64("forecast", s.Forecast).
			Bool("liquidate", liquidate).Msg("selling long shares")
		p.submit(ctx, &r, model.SideSell, s, s.LongShares, s.BidPrice)
	}

	for _, c := range cands {
		s := c.Snapshot
		if s.ShortShares < 1 {
			continue
		}
		if s.Forecast <= p.Params.ShortHold && !liquidate {
			continue
		}
		if p.thinHistory(c) && !liquidate {
			p.Log.Info().Str("symbol", s.Symbol).Int64("shares", s.ShortShares).Int("samples", c.Samples).
				Msg("would cover short shares but history is too short")
			r.skip(s.Symbol, "short history")
			continue
		}
		p.Log.Warn().Str("symbol", s.Symbol).Int64("shares", s.ShortShares).Float64("forecast", s.Forecast).
			Bool("liquidate", liquidate).Msg("covering short shares")
		p.submit(ctx, &r, model.SideCover, s, s.ShortShares, s.AskPrice)
	}

	return r
}
