// Package forecast derives the probability that an instrument's price rises.
package forecast

import (
	"context"
	"fmt"

	"TickTrader/internal/history"
	"TickTrader/internal/model"
)

// Source supplies forecasts computed by the market itself.
type Source interface {
	Forecast(ctx context.Context, symbol string) (float64, error)
}

// Estimator produces forecasts in one of two modes fixed at construction.
type Estimator struct {
	advanced bool
	src      Source
}

// NewEstimator returns an estimator reading forecasts from src when advanced
// is true, and deriving them from the snapshot window otherwise.
func NewEstimator(advanced bool, src Source) *Estimator {
	return &Estimator{advanced: advanced, src: src}
}

// Advanced reports whether forecasts come from the market data source.
func (e *Estimator) Advanced() bool { return e.advanced }

// Mode is a short label for logs and reports.
func (e *Estimator) Mode() string {
	if e.advanced {
		return "advanced"
	}
	return "basic"
}

// Estimate returns the forecast for a new observation of symbol whose ask
// price is ask, given the window of earlier snapshots.
func (e *Estimator) Estimate(ctx context.Context, symbol string, w *history.Window, ask float64) (float64, error) {
	if e.advanced {
		f, err := e.src.Forecast(ctx, symbol)
		if err != nil {
			return model.NeutralForecast, fmt.Errorf("forecast %s: %w", symbol, err)
		}
		return model.ClampForecast(f), nil
	}
	return Trend(w, ask), nil
}

// Trend counts the strictly rising ask steps across the window and into ask.
// A full window yields history.Capacity steps and the forecast is
// up/history.Capacity; a partial window gives the neutral forecast.
func Trend(w *history.Window, ask float64) float64 {
	if !w.Full() {
		return model.NeutralForecast
	}
	asks := append(w.Asks(), ask)
	return float64(UpSteps(asks)) / float64(history.Capacity)
}

// UpSteps counts adjacent pairs where the later price is strictly greater.
func UpSteps(prices []float64) int {
	up := 0
	for i := 1; i < len(prices); i++ {
		if prices[i] > prices[i-1] {
			up++
		}
	}
	return up
}
