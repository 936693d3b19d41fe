package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"TickTrader/internal/collector"
	"TickTrader/internal/config"
	"TickTrader/internal/forecast"
	"TickTrader/internal/gateway"
	"TickTrader/internal/history"
	"TickTrader/internal/id"
	"TickTrader/internal/metrics"
	"TickTrader/internal/notifier"
	"TickTrader/internal/paper"
	"TickTrader/internal/recorder"
	"TickTrader/internal/scheduler"
	"TickTrader/internal/strategy"
)

// engine is a fully wired trading loop with its side services.
type engine struct {
	market   gateway.Market
	sched    *scheduler.Scheduler
	hub      *notifier.Hub
	telegram *notifier.TelegramNotifier
	rec      recorder.Recorder
	metrics  *http.Server
	log      zerolog.Logger
}

func openMarket(cfg *config.Config, log zerolog.Logger) (gateway.Market, error) {
	if cfg.Market.Source == config.SourceGateway {
		return gateway.NewClient(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Market.Proxy), nil
	}
	ex, err := paper.NewExchange(paperConfig(cfg.Paper), log)
	if err != nil {
		return nil, fmt.Errorf("open paper market: %w", err)
	}
	return ex, nil
}

func paperConfig(p config.Paper) paper.Config {
	return paper.Config{
		Seed:         p.Seed,
		Symbols:      p.Symbols,
		StartingCash: p.StartingCash,
		Commission:   p.Commission,
		AdvancedData: p.AdvancedData,
		StepInterval: p.StepInterval,
	}
}

func strategyParams(s config.Strategy) strategy.Params {
	return strategy.Params{
		LongEntry:       s.LongEntry,
		ShortEntry:      s.ShortEntry,
		LongHold:        s.LongHold,
		ShortHold:       s.ShortHold,
		CapitalReserve:  s.CapitalReserve,
		MinTradeCapital: s.MinTradeCapital,
		MinSamples:      history.Capacity,
	}
}

// newEngine opens the market, checks access and wires every collaborator.
// Missing basic market access is returned as collector.ErrNoMarketAccess.
func newEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*engine, error) {
	m, err := openMarket(cfg, log)
	if err != nil {
		return nil, err
	}
	acc, err := collector.CheckAccess(ctx, m)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", m.Name()).Bool("basic", acc.Basic).Bool("advanced", acc.Advanced).
		Msg("market access verified")

	est := forecast.NewEstimator(acc.Advanced, m)
	col := collector.NewCollector(m, est, log)
	pol := strategy.NewPolicy(strategyParams(cfg.Strategy), acc.Advanced, m, log)

	e := &engine{market: m, log: log}
	e.rec = openRecorder(cfg.Database.SQLitePath, log)

	reporters := notifier.NewMulti(log, notifier.NewLogReporter(log))
	if cfg.Hub.Addr != "" {
		e.hub = notifier.NewHub(log)
		e.hub.Start(cfg.Hub.Addr)
		reporters.Add(e.hub)
	}
	if cfg.TelegramEnabled() {
		e.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Market.Proxy, log)
		reporters.Add(e.telegram)
	}
	if cfg.Metrics.Addr != "" {
		e.metrics = metrics.Serve(cfg.Metrics.Addr)
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
	}

	e.sched = scheduler.NewScheduler(col, pol, m, reporters, e.rec, id.Run(), log)
	e.sched.Interval = cfg.Loop.Interval
	return e, nil
}

func openRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func (e *engine) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if e.hub != nil {
		if err := e.hub.Shutdown(ctx); err != nil {
			e.log.Warn().Err(err).Msg("hub shutdown")
		}
	}
	if e.metrics != nil {
		if err := e.metrics.Shutdown(ctx); err != nil {
			e.log.Warn().Err(err).Msg("metrics shutdown")
		}
	}
	if err := e.rec.Close(); err != nil {
		e.log.Warn().Err(err).Msg("close recorder")
	}
}
