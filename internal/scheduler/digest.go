package scheduler

import (
	"context"
	"fmt"
	"strings"

	"TickTrader/internal/notifier"
	"TickTrader/internal/recorder"
)

// RegisterDigest schedules the portfolio digest on a six-field cron spec.
func (s *Scheduler) RegisterDigest(ctx context.Context, spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.Digest(ctx) }); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Int("jobs", len(s.Cron.Entries())).Msg("cron started")
}

// Stop stops the cron scheduler and waits for a running digest.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("cron stopped")
}

// Digest publishes and journals the latest portfolio summary.
func (s *Scheduler) Digest(ctx context.Context) {
	sum, at, ok := s.Fund.Latest()
	if !ok {
		s.Log.Debug().Msg("digest skipped, no tick yet")
		return
	}
	s.Log.Info().Str("net_worth", sum.NetWorth.StringFixed(2)).Msg("portfolio digest")

	s.publish(ctx, notifier.Event{
		Kind:      notifier.EventDigest,
		Tick:      s.Ticks(),
		Time:      at,
		Portfolio: &sum,
		Change:    s.Fund.Change().String(),
	})
	if err := s.Recorder.RecordPortfolio(s.RunID, &recorder.PortfolioEntry{
		Kind: recorder.KindDigest, Tick: s.Ticks(), Time: at, Summary: sum,
	}); err != nil {
		s.Log.Error().Err(err).Msg("record digest")
	}
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	var cmd string
	if f := strings.Fields(command); len(f) > 0 {
		cmd = strings.ToLower(f[0])
	}
	switch cmd {
	case "/status":
		sum, at, ok := s.Fund.Latest()
		if !ok {
			return "No ticks completed yet."
		}
		return notifier.FormatStatus("Portfolio status", sum, s.Fund.Change(), at)
	case "/forecasts":
		s.mu.Lock()
		rows := append([]notifier.ForecastRow(nil), s.forecasts...)
		s.mu.Unlock()
		return notifier.FormatForecastMessage(rows)
	default:
		return "Available commands:\n• /status\n• /forecasts"
	}
}
