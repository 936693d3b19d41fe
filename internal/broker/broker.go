// Package broker declares the execution and account collaborators.
package broker

import "context"

// Executor submits market orders. Quantities are whole shares.
type Executor interface {
	Buy(ctx context.Context, symbol string, shares int64) error
	Sell(ctx context.Context, symbol string, shares int64) error
	Short(ctx context.Context, symbol string, shares int64) error
	Cover(ctx context.Context, symbol string, shares int64) error
}

// Account reports the capital available for new positions.
type Account interface {
	FreeCapital(ctx context.Context) (float64, error)
}

// Broker is both.
type Broker interface {
	Executor
	Account
}
