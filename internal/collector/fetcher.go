package collector

import (
	"context"

	"TickTrader/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	Access(ctx context.Context) (model.Access, error)
	Symbols(ctx context.Context) ([]string, error)
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	Position(ctx context.Context, symbol string) (model.Position, error)
	Forecast(ctx context.Context, symbol string) (float64, error)
	Name() string
}
