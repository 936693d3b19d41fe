package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"TickTrader/internal/forecast"
	"TickTrader/internal/history"
	"TickTrader/internal/model"
)

// ErrNoMarketAccess is returned when the account cannot read market data at all.
var ErrNoMarketAccess = errors.New("no market data access")

// Collector turns one round of market queries into snapshots.
type Collector struct {
	Fetcher   Fetcher
	Estimator *forecast.Estimator
	Log       zerolog.Logger
	Now       func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, est *forecast.Estimator, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher:   fetcher,
		Estimator: est,
		Log:       log.With().Str("component", "collector").Logger(),
		Now:       time.Now,
	}
}

// CheckAccess verifies the startup precondition. Missing basic access is fatal
// for the caller; the advanced flag selects the forecast mode.
func CheckAccess(ctx context.Context, f Fetcher) (model.Access, error) {
	acc, err := f.Access(ctx)
	if err != nil {
		return model.Access{}, fmt.Errorf("check access via %s: %w", f.Name(), err)
	}
	if !acc.Basic {
		return acc, ErrNoMarketAccess
	}
	return acc, nil
}

// Collect records one snapshot per tradable symbol into store and returns the
// snapshots taken this round. A symbol whose data cannot be read is skipped.
func (c *Collector) Collect(ctx context.Context, store *history.Store) ([]model.Snapshot, error) {
	symbols, err := c.Fetcher.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch symbols: %w", err)
	}

	now := c.Now()
	snaps := make([]model.Snapshot, 0, len(symbols))
	for _, sym := range symbols {
		s, err := c.snapshot(ctx, store, sym, now)
		if err != nil {
			c.Log.Warn().Err(err).Str("symbol", sym).Msg("snapshot skipped")
			continue
		}
		store.Record(sym, s)
		snaps = append(snaps, s)
	}
	return snaps, nil
}

func (c *Collector) snapshot(ctx context.Context, store *history.Store, sym string, at time.Time) (model.Snapshot, error) {
	q, err := c.Fetcher.Quote(ctx, sym)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("fetch quote: %w", err)
	}
	if q.Symbol == "" {
		q.Symbol = sym
	}
	pos, err := c.Fetcher.Position(ctx, sym)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("fetch position: %w", err)
	}
	f, err := c.Estimator.Estimate(ctx, sym, store.Window(sym), q.Ask)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.NewSnapshot(q, pos, f, at), nil
}
