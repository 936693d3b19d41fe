package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/model"
)

func TestBuy_LongPassOrderAndSizing(t *testing.T) {
	b := newFakeBroker(50_000_000 + 100_000_000)
	b.prices = map[string]float64{"LOW": 10, "HIGH": 10}
	p := newTestPolicy(b, false)

	low := cand("LOW", 0.65, full)
	high := cand("HIGH", 0.9, full)
	high.Snapshot.MaxShares = 3_000_000

	r := p.Buy(context.Background(), []Candidate{low, high})
	require.NoError(t, r.Err)

	// HIGH first: 100M / 10 = 10M shares but capped by room 3M.
	// Then LOW: cash left 150M-30M, budget 70M → 7M shares capped by 1M room.
	require.Len(t, b.calls, 2)
	assert.Equal(t, call{model.SideBuy, "HIGH", 3_000_000}, b.calls[0])
	assert.Equal(t, call{model.SideBuy, "LOW", 1_000_000}, b.calls[1])
	assert.Equal(t, 10.0, r.Orders[0].Price)
}

func TestBuy_ShortPassAscendingUsesBid(t *testing.T) {
	b := newFakeBroker(50_000_000 + 27_000_000)
	b.prices = map[string]float64{"WEAK": 9, "WORST": 9}
	p := newTestPolicy(b, false)

	weak := cand("WEAK", 0.35, full)
	worst := cand("WORST", 0.05, full)

	r := p.Buy(context.Background(), []Candidate{weak, worst})
	require.NoError(t, r.Err)

	// WORST first: 27M at bid 9 affords 3M shares, room caps it at 1M (9M spent).
	// WEAK then sees 18M spendable, under the floor.
	require.Len(t, b.calls, 1)
	assert.Equal(t, call{model.SideShort, "WORST", 1_000_000}, b.calls[0])
	assert.Equal(t, 9.0, r.Orders[0].Price)
	assert.True(t, r.Halted)
}

func TestBuy_ThresholdsAreStrict(t *testing.T) {
	b := newFakeBroker(1e12)
	p := newTestPolicy(b, false)

	r := p.Buy(context.Background(), []Candidate{cand("UP", 0.6, full), cand("DOWN", 0.4, full), cand("MID", 0.5, full)})
	require.NoError(t, r.Err)
	assert.Empty(t, b.calls)
	assert.Zero(t, b.capHits)
}

func TestBuy_SkipsThinHistoryInBasicMode(t *testing.T) {
	b := newFakeBroker(1e12)
	p := newTestPolicy(b, false)

	r := p.Buy(context.Background(), []Candidate{cand("UP", 0.9, full-1), cand("DOWN", 0.1, 0)})
	assert.Empty(t, b.calls)
	assert.Len(t, r.Skips, 2)

	b = newFakeBroker(1e12)
	p = newTestPolicy(b, true)
	p.Buy(context.Background(), []Candidate{cand("UP", 0.9, 1)})
	assert.Len(t, b.calls, 1)
}

func TestBuy_CapitalFloorStopsPass(t *testing.T) {
	b := newFakeBroker(50_000_000 + 24_999_999)
	p := newTestPolicy(b, false)

	r := p.Buy(context.Background(), []Candidate{
		cand("A", 0.9, full), cand("B", 0.8, full), cand("C", 0.1, full),
	})
	require.NoError(t, r.Err)
	assert.Empty(t, b.calls)
	assert.True(t, r.Halted)
	// the long pass halts on its first capital query and the short pass never runs
	assert.Equal(t, 1, b.capHits)
}

func TestBuy_ShortPassRunsWhenNoLongCandidate(t *testing.T) {
	b := newFakeBroker(50_000_000 + 24_999_999)
	p := newTestPolicy(b, false)

	r := p.Buy(context.Background(), []Candidate{cand("C", 0.1, full)})
	assert.True(t, r.Halted)
	assert.Equal(t, 1, b.capHits, "short pass queried capital")
}

func TestBuy_FloorReachedMidPass(t *testing.T) {
	b := newFakeBroker(50_000_000 + 30_000_000)
	b.prices = map[string]float64{"A": 10, "B": 10}
	p := newTestPolicy(b, false)

	a := cand("A", 0.9, full)
	a.Snapshot.MaxShares = 1_000_000 // spends 10M, leaves 20M < floor

	r := p.Buy(context.Background(), []Candidate{a, cand("B", 0.8, full)})
	require.Len(t, b.calls, 1)
	assert.Equal(t, "A", b.calls[0].Symbol)
	assert.True(t, r.Halted)
}

func TestBuy_ZeroQuantityContinues(t *testing.T) {
	b := newFakeBroker(1e9)
	b.prices = map[string]float64{"B": 10}
	p := newTestPolicy(b, false)

	full1 := held(cand("A", 0.9, full), 600_000, 400_000) // no room left
	r := p.Buy(context.Background(), []Candidate{full1, cand("B", 0.8, full)})
	require.Len(t, b.calls, 1)
	assert.Equal(t, "B", b.calls[0].Symbol)
	assert.Equal(t, []Skip{{Symbol: "A", Reason: "nothing to buy"}}, r.Skips)
}

func TestBuy_NeverExceedsCapOrCapital(t *testing.T) {
	for _, cash := range []float64{75_000_001, 80_000_000, 1e8, 3.3e8, 1e10} {
		b := newFakeBroker(cash)
		b.prices = map[string]float64{"A": 10, "B": 9}
		p := newTestPolicy(b, false)

		a := held(cand("A", 0.9, full), 200, 300)
		a.Snapshot.MaxShares = 9_000_000
		s := held(cand("B", 0.1, full), 0, 0)
		s.Snapshot.MaxShares = 5_000_000

		budget := cash - 50_000_000
		p.Buy(context.Background(), []Candidate{a, s})
		for _, c := range b.calls {
			switch c.Symbol {
			case "A":
				assert.LessOrEqual(t, c.Shares+500, int64(9_000_000))
				assert.LessOrEqual(t, float64(c.Shares)*10, budget)
				budget -= float64(c.Shares) * 10
			case "B":
				assert.LessOrEqual(t, c.Shares, int64(5_000_000))
				assert.LessOrEqual(t, float64(c.Shares)*9, budget)
			}
		}
	}
}

func TestBuy_CapitalErrorStopsPass(t *testing.T) {
	b := newFakeBroker(1e12)
	b.capErr = errors.New("account offline")
	p := newTestPolicy(b, false)

	r := p.Buy(context.Background(), []Candidate{cand("A", 0.9, full), cand("B", 0.95, full)})
	assert.Empty(t, b.calls)
	assert.ErrorIs(t, r.Err, b.capErr)
}
