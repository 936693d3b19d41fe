package strategy

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/history"
	"TickTrader/internal/model"
)

const full = history.Capacity

func TestSell_LongRules(t *testing.T) {
	tests := []struct {
		name     string
		forecast float64
		samples  int
		advanced bool
		want     bool
	}{
		{"bullish hold", 0.60, full, false, false},
		{"at hold threshold", 0.55, full, false, false},
		{"weakening", 0.54, full, false, true},
		{"neutral", 0.50, full, false, true},
		{"bearish", 0.20, full, false, true},
		{"thin history basic", 0.20, full - 1, false, false},
		{"thin history advanced", 0.20, 1, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBroker(0)
			p := newTestPolicy(b, tt.advanced)
			r := p.Sell(context.Background(), []Candidate{held(cand("ECP", tt.forecast, tt.samples), 100, 0)}, false)
			require.NoError(t, r.Err)
			if tt.want {
				require.Len(t, b.calls, 1)
				assert.Equal(t, call{model.SideSell, "ECP", 100}, b.calls[0])
				assert.Equal(t, 9.0, r.Orders[0].Price)
			} else {
				assert.Empty(t, b.calls)
			}
		})
	}
}

func TestSell_ShortRules(t *testing.T) {
	tests := []struct {
		name     string
		forecast float64
		samples  int
		want     bool
	}{
		{"bearish hold", 0.30, full, false},
		{"at hold threshold", 0.45, full, false},
		{"weakening", 0.46, full, true},
		{"bullish", 0.90, full, true},
		{"thin history", 0.90, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBroker(0)
			p := newTestPolicy(b, false)
			r := p.Sell(context.Background(), []Candidate{held(cand("JGN", tt.forecast, tt.samples), 0, 40)}, false)
			require.NoError(t, r.Err)
			if tt.want {
				require.Len(t, b.calls, 1)
				assert.Equal(t, call{model.SideCover, "JGN", 40}, b.calls[0])
				assert.Equal(t, 10.0, r.Orders[0].Price)
			} else {
				assert.Empty(t, b.calls)
			}
		})
	}
}

func TestSell_NothingHeldNothingSold(t *testing.T) {
	b := newFakeBroker(0)
	p := newTestPolicy(b, false)
	r := p.Sell(context.Background(), []Candidate{cand("ECP", 0.0, full), cand("JGN", 1.0, full)}, true)
	assert.Empty(t, b.calls)
	assert.Empty(t, r.Orders)
}

func TestSell_LiquidateClosesEverything(t *testing.T) {
	b := newFakeBroker(0)
	p := newTestPolicy(b, false)
	cands := []Candidate{
		held(cand("A", 0.95, 1), 100, 0),
		held(cand("B", 0.05, 2), 0, 70),
		held(cand("C", 0.50, full), 30, 20),
	}

	r := p.Sell(context.Background(), cands, true)
	require.NoError(t, r.Err)
	assert.ElementsMatch(t, []call{
		{model.SideSell, "A", 100},
		{model.SideSell, "C", 30},
		{model.SideCover, "B", 70},
		{model.SideCover, "C", 20},
	}, b.calls)
	assert.Empty(t, r.Skips)
}

func TestSell_LongsBeforeShorts(t *testing.T) {
	b := newFakeBroker(0)
	p := newTestPolicy(b, true)
	p.Sell(context.Background(), []Candidate{
		held(cand("S", 0.9, full), 0, 5),
		held(cand("L", 0.1, full), 5, 0),
	}, false)
	require.Len(t, b.calls, 2)
	assert.Equal(t, model.SideSell, b.calls[0].Side)
	assert.Equal(t, model.SideCover, b.calls[1].Side)
}

func TestSell_ThinHistoryLoggedAsInfo(t *testing.T) {
	var buf bytes.Buffer
	b := newFakeBroker(0)
	p := NewPolicy(DefaultParams(), false, b, zerolog.New(&buf))

	r := p.Sell(context.Background(), []Candidate{held(cand("ECP", 0.1, 4), 10, 0)}, false)
	assert.Empty(t, b.calls)
	require.Len(t, r.Skips, 1)
	assert.Equal(t, "ECP", r.Skips[0].Symbol)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), "history is too short")
	assert.Nil(t, r.Err)
}
