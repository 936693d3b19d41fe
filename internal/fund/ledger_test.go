package fund

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"TickTrader/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize_LongProfitExample(t *testing.T) {
	snaps := []model.Snapshot{{
		Symbol: "ECP", AskPrice: 12.5, BidPrice: 12,
		LongShares: 100, LongAvgCost: 10,
	}}

	s := Summarize(snaps, 0)
	assert.True(t, s.Cost.Equal(dec("1000")), s.Cost.String())
	assert.True(t, s.Profit.Equal(dec("200")), s.Profit.String())
	assert.True(t, s.StocksTotal.Equal(dec("1200")))
	assert.Equal(t, 1, s.Positions)
}

func TestSummarize_ShortMarkedAtAsk(t *testing.T) {
	snaps := []model.Snapshot{{
		Symbol: "JGN", AskPrice: 18, BidPrice: 17,
		ShortShares: 50, ShortAvgCost: 20,
	}}

	s := Summarize(snaps, 0)
	assert.True(t, s.Cost.Equal(dec("1000")))
	assert.True(t, s.Profit.Equal(dec("100")), s.Profit.String())
}

func TestSummarize_TotalsAndCash(t *testing.T) {
	snaps := []model.Snapshot{
		{Symbol: "A", AskPrice: 12, BidPrice: 11, LongShares: 10, LongAvgCost: 10},
		{Symbol: "B", AskPrice: 5, BidPrice: 4, ShortShares: 20, ShortAvgCost: 6},
		{Symbol: "C", AskPrice: 99, BidPrice: 98},
	}

	s := Summarize(snaps, 1_000.25)
	// A: cost 100, profit 10. B: cost 120, profit 20.
	assert.True(t, s.Cost.Equal(dec("220")))
	assert.True(t, s.Profit.Equal(dec("30")))
	assert.True(t, s.NetWorth.Equal(dec("1250.25")), s.NetWorth.String())
	assert.Equal(t, 2, s.Positions)
}

func TestSummarize_MatchesSnapshotMath(t *testing.T) {
	sn := model.Snapshot{AskPrice: 7.25, BidPrice: 7.1, LongShares: 3, LongAvgCost: 6.5, ShortShares: 4, ShortAvgCost: 8}
	assert.InDelta(t, sn.CostBasis(), CostBasis(sn).InexactFloat64(), 1e-9)
	assert.InDelta(t, sn.UnrealizedProfit(), UnrealizedProfit(sn).InexactFloat64(), 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0)
	assert.True(t, s.NetWorth.IsZero())
	assert.Zero(t, s.Positions)
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	_, _, ok := tr.Latest()
	assert.False(t, ok)
	assert.True(t, tr.Change().IsZero())

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tr.Update(Summary{NetWorth: dec("1000")}, now)
	tr.Update(Summary{NetWorth: dec("1150")}, now.Add(time.Minute))

	s, at, ok := tr.Latest()
	assert.True(t, ok)
	assert.True(t, s.NetWorth.Equal(dec("1150")))
	assert.Equal(t, now.Add(time.Minute), at)
	assert.True(t, tr.Change().Equal(dec("150")))
}
