package collector

import (
	"context"
	"fmt"

	"TickTrader/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Acc       model.Access
	Order     []string
	Quotes    map[string]model.Quote
	Positions map[string]model.Position
	Forecasts map[string]float64
	Fail      map[string]error // per-symbol quote failure
	SymErr    error
}

// NewMockFetcher returns a fetcher with basic access and no symbols.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		Acc:       model.Access{Basic: true},
		Quotes:    make(map[string]model.Quote),
		Positions: make(map[string]model.Position),
		Forecasts: make(map[string]float64),
		Fail:      make(map[string]error),
	}
}

// Set installs the quote (and optionally position) of a symbol.
func (m *MockFetcher) Set(q model.Quote, p model.Position) {
	if _, ok := m.Quotes[q.Symbol]; !ok {
		m.Order = append(m.Order, q.Symbol)
	}
	m.Quotes[q.Symbol] = q
	m.Positions[q.Symbol] = p
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Access(_ context.Context) (model.Access, error) { return m.Acc, nil }

func (m *MockFetcher) Symbols(_ context.Context) ([]string, error) {
	if m.SymErr != nil {
		return nil, m.SymErr
	}
	return append([]string(nil), m.Order...), nil
}

func (m *MockFetcher) Quote(_ context.Context, symbol string) (model.Quote, error) {
	if err := m.Fail[symbol]; err != nil {
		return model.Quote{}, err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		return model.Quote{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	return q, nil
}

func (m *MockFetcher) Position(_ context.Context, symbol string) (model.Position, error) {
	return m.Positions[symbol], nil
}

func (m *MockFetcher) Forecast(_ context.Context, symbol string) (float64, error) {
	f, ok := m.Forecasts[symbol]
	if !ok {
		return model.NeutralForecast, nil
	}
	return f, nil
}
