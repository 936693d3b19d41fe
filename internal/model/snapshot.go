package model

import "time"

// NeutralForecast is the forecast of an instrument without a directional signal.
const NeutralForecast = 0.5

// Snapshot is one instrument's market and position state at one tick.
// It is a value type and is never mutated after NewSnapshot returns.
type Snapshot struct {
	Symbol       string
	Time         time.Time
	AskPrice     float64
	BidPrice     float64
	MidPrice     float64
	MaxShares    int64
	LongShares   int64
	LongAvgCost  float64
	ShortShares  int64
	ShortAvgCost float64
	Forecast     float64 // 0.0 ~ 1.0, probability the price rises
}

// NewSnapshot combines a quote, a position and a forecast into a Snapshot.
// The forecast is clamped into [0, 1] and negative share counts are floored at zero.
func NewSnapshot(q Quote, p Position, forecast float64, at time.Time) Snapshot {
	return Snapshot{
		Symbol:       q.Symbol,
		Time:         at,
		AskPrice:     q.Ask,
		BidPrice:     q.Bid,
		MidPrice:     q.Price,
		MaxShares:    nonNegative(q.MaxShares),
		LongShares:   nonNegative(p.LongShares),
		LongAvgCost:  p.LongAvgCost,
		ShortShares:  nonNegative(p.ShortShares),
		ShortAvgCost: p.ShortAvgCost,
		Forecast:     ClampForecast(forecast),
	}
}

// ClampForecast forces f into [0, 1].
func ClampForecast(f float64) float64 {
	switch {
	case f != f: // NaN
		return NeutralForecast
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// CostBasis is what was paid for the open longs and shorts.
func (s Snapshot) CostBasis() float64 {
	return float64(s.LongShares)*s.LongAvgCost + float64(s.ShortShares)*s.ShortAvgCost
}

// UnrealizedProfit marks longs at bid and shorts at ask.
func (s Snapshot) UnrealizedProfit() float64 {
	long := float64(s.LongShares) * (s.BidPrice - s.LongAvgCost)
	short := float64(s.ShortShares) * (s.ShortAvgCost - s.AskPrice)
	return long + short
}

// Held reports whether any long or short shares are open.
func (s Snapshot) Held() bool {
	return s.LongShares > 0 || s.ShortShares > 0
}

// Room is the number of shares that can still be opened on either side.
func (s Snapshot) Room() int64 {
	return s.MaxShares - s.LongShares - s.ShortShares
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
