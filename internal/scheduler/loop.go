package scheduler

import (
	"context"
	"fmt"
	"time"

	"TickTrader/internal/fund"
	"TickTrader/internal/metrics"
	"TickTrader/internal/model"
	"TickTrader/internal/notifier"
	"TickTrader/internal/recorder"
	"TickTrader/internal/strategy"
)

// Announce journals the run and reports the forecast mode.
func (s *Scheduler) Announce(ctx context.Context, source string, liquidate bool) {
	mode := s.Collector.Estimator.Mode()
	if s.Collector.Estimator.Advanced() {
		s.Log.Info().Str("source", source).Msg("starting in advanced data mode")
	} else {
		s.Log.Warn().Str("source", source).Msg("starting in basic data mode")
	}

	if err := s.Recorder.RecordRun(&recorder.Run{
		ID: s.RunID, Mode: mode, Source: source, Liquidate: liquidate, StartedAt: time.Now(),
	}); err != nil {
		s.Log.Error().Err(err).Msg("record run")
	}

	msg := fmt.Sprintf("trader started in %s data mode on %s", mode, source)
	if liquidate {
		msg = fmt.Sprintf("trader liquidating all positions (%s data mode, %s)", mode, source)
	}
	s.publish(ctx, notifier.Event{Kind: notifier.EventStartup, Mode: mode, Message: msg})
}

// Run ticks until ctx is cancelled, sleeping Interval after each completed tick.
// After RequestLiquidation the next pass is a sell-only tick and Run returns
// its outcome.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Log.Info().Dur("interval", s.Interval).Msg("control loop started")
	for ctx.Err() == nil {
		if s.liquidate.Load() {
			return s.liquidateAndStop(ctx)
		}
		if _, err := s.Tick(ctx, false); err != nil && ctx.Err() == nil {
			s.Log.Error().Err(err).Msg("tick failed")
		}
		if s.liquidate.Load() {
			continue
		}
		if err := s.Sleep(ctx, s.Interval); err != nil {
			break
		}
	}
	s.Log.Info().Int64("ticks", s.Ticks()).Msg("control loop stopped")
	return nil
}

func (s *Scheduler) liquidateAndStop(ctx context.Context) error {
	res, err := s.Liquidate(ctx)
	s.Log.Info().Int64("ticks", s.Ticks()).Msg("control loop stopped after liquidation")
	if err != nil {
		return err
	}
	if res.Sell.Err != nil {
		return fmt.Errorf("liquidation incomplete: %w", res.Sell.Err)
	}
	return nil
}

// Liquidate runs a single sell-only tick that closes every open position.
func (s *Scheduler) Liquidate(ctx context.Context) (TickResult, error) {
	s.Log.Warn().Msg("liquidating all positions")
	return s.Tick(ctx, true)
}

// Tick snapshots every instrument, then sells, then buys unless liquidating.
func (s *Scheduler) Tick(ctx context.Context, liquidate bool) (TickResult, error) {
	s.mu.Lock()
	s.tick++
	n := s.tick
	s.mu.Unlock()

	res := TickResult{Tick: n}
	snaps, err := s.Collector.Collect(ctx, s.Store)
	if err != nil {
		return res, fmt.Errorf("tick %d: %w", n, err)
	}
	res.Snapshots = snaps
	s.warnMissing(snaps)

	cash, err := s.Broker.FreeCapital(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("free capital unavailable, net worth excludes cash")
		cash = 0
	}

	ranked := strategy.Rank(s.candidates(snaps))
	rows := forecastRows(ranked)
	for _, c := range ranked {
		metrics.Forecast.WithLabelValues(c.Snapshot.Symbol).Set(c.Snapshot.Forecast)
	}

	res.Sell = s.Policy.Sell(ctx, ranked, liquidate)
	if !liquidate {
		res.Buy = s.Policy.Buy(ctx, ranked)
	}

	res.Summary = fund.Summarize(snaps, cash)
	now := time.Now()
	s.Fund.Update(res.Summary, now)
	metrics.NetWorth.Set(res.Summary.NetWorth.InexactFloat64())
	metrics.TicksTotal.Inc()

	s.mu.Lock()
	s.forecasts = rows
	s.mu.Unlock()

	kind, entry := notifier.EventTick, recorder.KindTick
	if liquidate {
		kind, entry = notifier.EventLiquidation, recorder.KindLiquidation
	}
	orders := res.Orders()
	summary := res.Summary
	s.publish(ctx, notifier.Event{
		Kind:      kind,
		Tick:      n,
		Time:      now,
		Mode:      s.Collector.Estimator.Mode(),
		Forecasts: rows,
		Orders:    notifier.OrderRows(orders),
		Portfolio: &summary,
		Change:    s.Fund.Change().String(),
	})
	s.journal(n, snaps, orders, &recorder.PortfolioEntry{Kind: entry, Tick: n, Time: now, Summary: summary})

	s.Log.Debug().Int64("tick", n).Int("snapshots", len(snaps)).Int("orders", len(orders)).
		Bool("halted", res.Buy.Halted).Msg("tick complete")
	return res, nil
}

// Ticks returns the number of ticks started.
func (s *Scheduler) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// warnMissing reports held positions whose symbol produced no snapshot this
// tick. They are neither traded nor valued until data returns.
func (s *Scheduler) warnMissing(snaps []model.Snapshot) {
	fresh := make(map[string]bool, len(snaps))
	for _, sn := range snaps {
		fresh[sn.Symbol] = true
	}
	for _, sym := range s.Store.Symbols() {
		if fresh[sym] {
			continue
		}
		last, err := s.Store.Latest(sym)
		if err != nil || !last.Held() {
			continue
		}
		s.Log.Warn().Str("symbol", sym).Int64("long", last.LongShares).Int64("short", last.ShortShares).
			Time("last_seen", last.Time).Msg("held position missing from this tick")
	}
}

func (s *Scheduler) candidates(snaps []model.Snapshot) []strategy.Candidate {
	out := make([]strategy.Candidate, 0, len(snaps))
	for _, sn := range snaps {
		out = append(out, strategy.Candidate{Snapshot: sn, Samples: s.Store.Len(sn.Symbol)})
	}
	return out
}

func forecastRows(ranked []strategy.Candidate) []notifier.ForecastRow {
	rows := make([]notifier.ForecastRow, 0, len(ranked))
	for _, c := range ranked {
		rows = append(rows, notifier.ForecastRow{
			Symbol:   c.Snapshot.Symbol,
			Count:    c.Samples,
			Forecast: c.Snapshot.Forecast,
			Held:     c.Snapshot.Held(),
		})
	}
	return rows
}

func (s *Scheduler) publish(ctx context.Context, ev notifier.Event) {
	ev.RunID = s.RunID
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if err := s.Notifier.Publish(ctx, ev); err != nil {
		s.Log.Warn().Err(err).Str("kind", ev.Kind).Msg("report not delivered")
	}
}

func (s *Scheduler) journal(n int64, snaps []model.Snapshot, orders []model.Order, entry *recorder.PortfolioEntry) {
	if err := s.Recorder.RecordSnapshots(s.RunID, n, snaps); err != nil {
		s.Log.Error().Err(err).Msg("record snapshots")
	}
	if err := s.Recorder.RecordOrders(s.RunID, n, orders); err != nil {
		s.Log.Error().Err(err).Msg("record orders")
	}
	if err := s.Recorder.RecordPortfolio(s.RunID, entry); err != nil {
		s.Log.Error().Err(err).Msg("record portfolio")
	}
}
