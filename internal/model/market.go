package model

import "time"

// Quote is the exchange-side view of one instrument at one moment.
type Quote struct {
	Symbol    string
	Ask       float64
	Bid       float64
	Price     float64
	MaxShares int64
}

// Position is the account-side holding for one instrument, normalized from the
// (shares, avg, shorts, avgShort) tuple reported by the market.
type Position struct {
	LongShares   int64
	LongAvgCost  float64
	ShortShares  int64
	ShortAvgCost float64
}

// Access reports which market data products the account may use.
type Access struct {
	Basic    bool
	Advanced bool
}

// Side identifies which of the four order kinds was submitted.
type Side string

const (
	SideBuy   Side = "BUY"
	SideSell  Side = "SELL"
	SideShort Side = "SHORT"
	SideCover Side = "COVER"
)

// Order is a submitted market order as seen by the engine.
type Order struct {
	ID     string
	Symbol string
	Side   Side
	Shares int64
	Price  float64 // reference price used for sizing, not a fill confirmation
	Time   time.Time
	Err    error
}
