// Package paper is an in-process simulated equity market with a single
// account. It serves both market data and order execution.
package paper

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"TickTrader/internal/model"
)

// ErrNoAdvancedData is returned by Forecast when the account lacks the
// advanced data product.
var ErrNoAdvancedData = errors.New("advanced market data not available")

const (
	spread      = 0.002 // ask-bid gap as a fraction of price
	minPrice    = 1.0
	flipChance  = 0.02
	driftStep   = 0.02
	minForecast = 0.05
	maxForecast = 0.95
)

// Config configures an Exchange.
type Config struct {
	Seed         int64
	Symbols      []string
	StartingCash float64
	Commission   float64
	AdvancedData bool
	StepInterval time.Duration // 0 disables wall-clock stepping; use Step
}

type instrument struct {
	price      float64
	volatility float64
	forecast   float64 // probability the next step goes up
	maxShares  int64
}

// Exchange is a random-walk market. Each step moves every price up with
// probability equal to its hidden forecast. Safe for concurrent use.
type Exchange struct {
	mu       sync.Mutex
	cfg      Config
	rng      *rand.Rand
	symbols  []string
	inst     map[string]*instrument
	account  *Account
	steps    int64
	lastStep time.Time
	now      func() time.Time
	log      zerolog.Logger
}

// NewExchange seeds instruments for cfg.Symbols.
func NewExchange(cfg Config, log zerolog.Logger) (*Exchange, error) {
	if len(cfg.Symbols) == 0 {
		return nil, errors.New("paper: no symbols configured")
	}
	if cfg.StartingCash <= 0 {
		return nil, errors.New("paper: starting cash must be positive")
	}
	seed := uint64(cfg.Seed)
	if cfg.Seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Exchange{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		inst:    make(map[string]*instrument, len(cfg.Symbols)),
		account: NewAccount(cfg.StartingCash, cfg.Commission),
		now:     time.Now,
		log:     log.With().Str("component", "paper").Logger(),
	}
	for _, sym := range cfg.Symbols {
		if _, dup := e.inst[sym]; dup {
			continue
		}
		e.symbols = append(e.symbols, sym)
		e.inst[sym] = &instrument{
			price:      5 + e.rng.Float64()*995,
			volatility: 0.002 + e.rng.Float64()*0.02,
			forecast:   0.3 + e.rng.Float64()*0.4,
			maxShares:  int64(1+e.rng.IntN(10)) * 1_000_000,
		}
	}
	e.lastStep = e.now()
	e.log.Info().Int("symbols", len(e.symbols)).Float64("cash", cfg.StartingCash).
		Bool("advanced", cfg.AdvancedData).Msg("paper market opened")
	return e, nil
}

// Name identifies the paper market in logs and run records.
func (e *Exchange) Name() string { return "paper" }

// Step advances every instrument by one price move.
func (e *Exchange) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

// Steps returns how many steps the market has taken.
func (e *Exchange) Steps() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.steps
}

func (e *Exchange) step() {
	for _, sym := range e.symbols {
		in := e.inst[sym]
		move := 1 + in.volatility*e.rng.Float64()
		if e.rng.Float64() < in.forecast {
			in.price *= move
		} else {
			in.price /= move
		}
		in.price = math.Max(in.price, minPrice)

		if e.rng.Float64() < flipChance {
			in.forecast = 1 - in.forecast
		}
		in.forecast += (e.rng.Float64() - 0.5) * driftStep
		in.forecast = math.Min(maxForecast, math.Max(minForecast, in.forecast))
	}
	e.steps++
}

// catchUp applies the steps owed since the last one on the wall clock.
func (e *Exchange) catchUp() {
	if e.cfg.StepInterval <= 0 {
		return
	}
	now := e.now()
	for now.Sub(e.lastStep) >= e.cfg.StepInterval {
		e.step()
		e.lastStep = e.lastStep.Add(e.cfg.StepInterval)
	}
}

func (e *Exchange) lookup(sym string) (*instrument, error) {
	in, ok := e.inst[sym]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, sym)
	}
	return in, nil
}

func quoteOf(sym string, in *instrument) model.Quote {
	return model.Quote{
		Symbol:    sym,
		Ask:       in.price * (1 + spread/2),
		Bid:       in.price * (1 - spread/2),
		Price:     in.price,
		MaxShares: in.maxShares,
	}
}

// Access always grants basic data; advanced data follows Config.AdvancedData.
func (e *Exchange) Access(_ context.Context) (model.Access, error) {
	return model.Access{Basic: true, Advanced: e.cfg.AdvancedData}, nil
}

// Symbols lists tradable symbols and advances the clock-driven walk.
func (e *Exchange) Symbols(_ context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.catchUp()
	return append([]string(nil), e.symbols...), nil
}

// Quote returns the current ask, bid, mid price and position cap of sym.
func (e *Exchange) Quote(_ context.Context, sym string) (model.Quote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	in, err := e.lookup(sym)
	if err != nil {
		return model.Quote{}, err
	}
	return quoteOf(sym, in), nil
}

// Position returns the account holding in sym, zero when flat.
func (e *Exchange) Position(_ context.Context, sym string) (model.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.lookup(sym); err != nil {
		return model.Position{}, err
	}
	h := e.account.holding(sym)
	return model.Position{LongShares: h.Long, LongAvgCost: h.LongAvg, ShortShares: h.Short, ShortAvgCost: h.ShortAvg}, nil
}

// Forecast reveals the hidden forecast when advanced data is enabled.
func (e *Exchange) Forecast(_ context.Context, sym string) (float64, error) {
	if !e.cfg.AdvancedData {
		return 0, ErrNoAdvancedData
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	in, err := e.lookup(sym)
	if err != nil {
		return 0, err
	}
	return in.forecast, nil
}

// FreeCapital is the account's free cash.
func (e *Exchange) FreeCapital(_ context.Context) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Cash(), nil
}

// Realized is the closed profit after commissions.
func (e *Exchange) Realized() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.account.Realized()
}

// Buy opens or adds to a long at ask.
func (e *Exchange) Buy(_ context.Context, sym string, shares int64) error {
	return e.fill(model.SideBuy, sym, shares)
}

// Sell closes long shares at bid.
func (e *Exchange) Sell(_ context.Context, sym string, shares int64) error {
	return e.fill(model.SideSell, sym, shares)
}

// Short opens or adds to a short at bid, reserving its notional as collateral.
func (e *Exchange) Short(_ context.Context, sym string, shares int64) error {
	return e.fill(model.SideShort, sym, shares)
}

// Cover closes short shares at ask.
func (e *Exchange) Cover(_ context.Context, sym string, shares int64) error {
	return e.fill(model.SideCover, sym, shares)
}

func (e *Exchange) fill(side model.Side, sym string, n int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	in, err := e.lookup(sym)
	if err != nil {
		return err
	}
	q := quoteOf(sym, in)

	switch side {
	case model.SideBuy:
		err = e.account.buy(sym, n, q.MaxShares, q.Ask)
	case model.SideSell:
		err = e.account.sell(sym, n, q.Bid)
	case model.SideShort:
		err = e.account.short(sym, n, q.MaxShares, q.Bid)
	case model.SideCover:
		err = e.account.cover(sym, n, q.Ask)
	}
	if err != nil {
		return fmt.Errorf("%s %d %s: %w", side, n, sym, err)
	}
	e.log.Debug().Str("symbol", sym).Str("side", string(side)).Int64("shares", n).
		Float64("cash", e.account.Cash()).Msg("filled")
	return nil
}
