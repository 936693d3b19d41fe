// Package fund aggregates per-instrument snapshots into portfolio totals.
package fund

import (
	"github.com/shopspring/decimal"

	"TickTrader/internal/model"
)

// Summary holds portfolio totals for one tick.
type Summary struct {
	Cost        decimal.Decimal `json:"cost"`         // paid for open positions
	Profit      decimal.Decimal `json:"profit"`       // unrealized, longs marked at bid and shorts at ask
	StocksTotal decimal.Decimal `json:"stocks_total"` // Cost + Profit
	Cash        decimal.Decimal `json:"cash"`
	NetWorth    decimal.Decimal `json:"net_worth"` // StocksTotal + Cash
	Positions   int             `json:"positions"` // instruments with any open shares
}

// Summarize sums cost basis and unrealized profit over snaps and adds free
// cash. Instruments without open shares contribute nothing.
func Summarize(snaps []model.Snapshot, cash float64) Summary {
	var s Summary
	for _, sn := range snaps {
		if !sn.Held() {
			continue
		}
		s.Positions++
		s.Cost = s.Cost.Add(CostBasis(sn))
		s.Profit = s.Profit.Add(UnrealizedProfit(sn))
	}
	s.StocksTotal = s.Cost.Add(s.Profit)
	s.Cash = decimal.NewFromFloat(cash)
	s.NetWorth = s.StocksTotal.Add(s.Cash)
	return s
}

// CostBasis is long×longAvg + short×shortAvg.
func CostBasis(sn model.Snapshot) decimal.Decimal {
	long := decimal.NewFromInt(sn.LongShares).Mul(decimal.NewFromFloat(sn.LongAvgCost))
	short := decimal.NewFromInt(sn.ShortShares).Mul(decimal.NewFromFloat(sn.ShortAvgCost))
	return long.Add(short)
}

// UnrealizedProfit is long×(bid−longAvg) + short×(shortAvg−ask).
func UnrealizedProfit(sn model.Snapshot) decimal.Decimal {
	bid := decimal.NewFromFloat(sn.BidPrice)
	ask := decimal.NewFromFloat(sn.AskPrice)
	long := decimal.NewFromInt(sn.LongShares).Mul(bid.Sub(decimal.NewFromFloat(sn.LongAvgCost)))
	short := decimal.NewFromInt(sn.ShortShares).Mul(decimal.NewFromFloat(sn.ShortAvgCost).Sub(ask))
	return long.Add(short)
}
