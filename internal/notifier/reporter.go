package notifier

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"TickTrader/internal/fund"
	"TickTrader/internal/model"
)

// Event kinds.
const (
	EventStartup     = "startup"
	EventTick        = "tick"
	EventDigest      = "digest"
	EventLiquidation = "liquidation"
)

// OrderRow is the wire form of a submitted order.
type OrderRow struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Shares int64   `json:"shares"`
	Price  float64 `json:"price"`
	Error  string  `json:"error,omitempty"`
}

// OrderRows converts orders for publishing.
func OrderRows(orders []model.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		r := OrderRow{ID: o.ID, Symbol: o.Symbol, Side: string(o.Side), Shares: o.Shares, Price: o.Price}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		rows = append(rows, r)
	}
	return rows
}

// Event is something worth telling the operator about.
type Event struct {
	Kind      string        `json:"kind"`
	RunID     string        `json:"run_id"`
	Time      time.Time     `json:"time"`
	Tick      int64         `json:"tick,omitempty"`
	Mode      string        `json:"mode,omitempty"`
	Message   string        `json:"message,omitempty"`
	Forecasts []ForecastRow `json:"forecasts,omitempty"`
	Orders    []OrderRow    `json:"orders,omitempty"`
	Portfolio *fund.Summary `json:"portfolio,omitempty"`
	Change    string        `json:"change,omitempty"`
}

// Reporter delivers events to one destination.
type Reporter interface {
	Publish(ctx context.Context, ev Event) error
	Name() string
}

// Multi fans events out to several reporters. A failing sink is logged and
// does not stop the others.
type Multi struct {
	sinks []Reporter
	log   zerolog.Logger
}

// NewMulti creates a fan-out over sinks. nil sinks are ignored.
func NewMulti(log zerolog.Logger, sinks ...Reporter) *Multi {
	m := &Multi{log: log.With().Str("component", "notifier").Logger()}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add registers another sink.
func (m *Multi) Add(r Reporter) {
	m.sinks = append(m.sinks, r)
}

func (m *Multi) Name() string { return "multi" }

// Publish sends ev to every sink and returns their combined errors.
func (m *Multi) Publish(ctx context.Context, ev Event) error {
	var errs error
	for _, s := range m.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			m.log.Error().Err(err).Str("sink", s.Name()).Str("kind", ev.Kind).Msg("publish failed")
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// LogReporter writes events to the process logger, one line per table row.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log.With().Str("component", "report").Logger()}
}

func (l *LogReporter) Name() string { return "log" }

func (l *LogReporter) Publish(_ context.Context, ev Event) error {
	if ev.Message != "" {
		l.log.Info().Str("kind", ev.Kind).Msg(ev.Message)
	}
	if len(ev.Forecasts) > 0 {
		for _, line := range FormatForecastTable(ev.Forecasts) {
			l.log.Info().Msg(line)
		}
	}
	if ev.Portfolio != nil {
		for _, line := range FormatPortfolio(*ev.Portfolio) {
			l.log.Info().Msg(line)
		}
	}
	return nil
}
