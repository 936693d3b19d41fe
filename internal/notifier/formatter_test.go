package notifier

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/fund"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.000"},
		{12.5, "$12.500"},
		{56_000, "$56.000k"},
		{1_234_000, "$1.234m"},
		{-2_500_000_000, "-$2.500b"},
		{7_250_000_000_000, "$7.250t"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.in))
		})
	}
}

func TestFormatForecastTable(t *testing.T) {
	lines := FormatForecastTable([]ForecastRow{
		{Symbol: "ECP", Count: 12, Forecast: 0.75},
		{Symbol: "JGN", Count: 3, Forecast: 0.5, Held: true},
	})
	require.Len(t, lines, 6)

	assert.Equal(t, "│  SYM   Count     Forecast  │", lines[1])
	assert.Equal(t, "│  ECP   12          0.7500  │", lines[3])
	assert.Equal(t, "│  <JGN> 3           0.5000  │", lines[4])

	width := len([]rune(lines[1]))
	for _, l := range lines {
		assert.Len(t, []rune(l), width, l)
	}
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.True(t, strings.HasSuffix(lines[5], "┘"))
}

func TestFormatPortfolio(t *testing.T) {
	s := fund.Summarize(nil, 0)
	s.Cost = decimal.NewFromInt(1_000_000)
	s.Profit = decimal.NewFromInt(200_000)
	s.StocksTotal = decimal.NewFromInt(1_200_000)
	s.NetWorth = decimal.NewFromInt(51_200_000)

	assert.Equal(t, []string{
		"Stocks paid   : $1.000m",
		"Stocks profit : $200.000k",
		"Stocks total  : $1.200m",
		"Total worth   : $51.200m",
	}, FormatPortfolio(s))
}

func TestFormatStatus(t *testing.T) {
	s := fund.Summary{Positions: 2, NetWorth: decimal.NewFromInt(5000)}
	msg := FormatStatus("Portfolio <digest>", s, decimal.NewFromInt(-250), time.Now())
	assert.Contains(t, msg, "Portfolio &lt;digest&gt;")
	assert.Contains(t, msg, "Open positions: 2")
	assert.Contains(t, msg, "Session change: -$250.000")
	assert.Contains(t, msg, "Total worth   : $5.000k")
}

func TestFormatForecastMessage(t *testing.T) {
	assert.Equal(t, "No market data yet.", FormatForecastMessage(nil))
	msg := FormatForecastMessage([]ForecastRow{{Symbol: "ECP", Count: 1, Forecast: 0.5, Held: true}})
	assert.Contains(t, msg, "&lt;ECP&gt;")
	assert.True(t, strings.HasPrefix(msg, "<pre>"))
}
