// Package scheduler runs the trading control loop and the periodic digest.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"TickTrader/internal/broker"
	"TickTrader/internal/collector"
	"TickTrader/internal/fund"
	"TickTrader/internal/history"
	"TickTrader/internal/model"
	"TickTrader/internal/notifier"
	"TickTrader/internal/recorder"
	"TickTrader/internal/strategy"
)

// DefaultInterval is the pause between the end of one tick and the next.
const DefaultInterval = 6 * time.Second

// Scheduler owns the control loop state and its collaborators.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Store     *history.Store
	Policy    *strategy.Policy
	Broker    broker.Broker
	Fund      *fund.Tracker
	Notifier  notifier.Reporter
	Recorder  recorder.Recorder
	Interval  time.Duration
	RunID     string
	Log       zerolog.Logger

	// Sleep waits between ticks; replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	tick      int64
	forecasts []notifier.ForecastRow

	liquidate atomic.Bool
	wake      chan struct{}
}

// TickResult is what one pass through the loop did.
type TickResult struct {
	Tick      int64
	Snapshots []model.Snapshot
	Sell      strategy.Result
	Buy       strategy.Result
	Summary   fund.Summary
}

// Orders returns all orders submitted during the tick, sells first.
func (r TickResult) Orders() []model.Order {
	return append(append([]model.Order(nil), r.Sell.Orders...), r.Buy.Orders...)
}

// NewScheduler creates a new Scheduler.
func NewScheduler(col *collector.Collector, pol *strategy.Policy, b broker.Broker, rep notifier.Reporter, rec recorder.Recorder, runID string, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Store:     history.NewStore(),
		Policy:    pol,
		Broker:    b,
		Fund:      fund.NewTracker(),
		Notifier:  rep,
		Recorder:  rec,
		Interval:  DefaultInterval,
		RunID:     runID,
		Log:       log.With().Str("component", "scheduler").Str("run_id", runID).Logger(),
		wake:      make(chan struct{}, 1),
	}
	s.Sleep = s.sleep
	return s
}

// RequestLiquidation makes Run close every position on its next pass and
// return. A pending sleep is cut short. Safe to call from any goroutine.
func (s *Scheduler) RequestLiquidation() {
	s.liquidate.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// sleep waits d, returning early when liquidation is requested.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.wake:
		return nil
	case <-t.C:
		return nil
	}
}
