package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"TickTrader/internal/fund"
)

// ForecastRow is one line of the forecast table.
type ForecastRow struct {
	Symbol   string  `json:"symbol"`
	Count    int     `json:"count"`
	Forecast float64 `json:"forecast"`
	Held     bool    `json:"held"`
}

var moneySuffix = map[string]string{
	"k": "k",
	"M": "m",
	"G": "b",
	"T": "t",
	"P": "q",
}

// FormatMoney renders v with three decimals and a short magnitude suffix,
// e.g. $1.234m, $56.000k, -$2.500b.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v < 1000 {
		return fmt.Sprintf("%s$%.3f", sign, v)
	}
	val, prefix := humanize.ComputeSI(v)
	suffix, ok := moneySuffix[prefix]
	if !ok {
		return sign + "$" + humanize.Commaf(v)
	}
	return fmt.Sprintf("%s$%.3f%s", sign, val, suffix)
}

// FormatDecimal is FormatMoney for decimal amounts.
func FormatDecimal(d decimal.Decimal) string {
	return FormatMoney(d.InexactFloat64())
}

// FormatForecastTable draws the box table of symbols, window sizes and
// forecasts. Held symbols are shown as <SYM>.
func FormatForecastTable(rows []ForecastRow) []string {
	header := "│  " + fmt.Sprintf("%-6s%-8s%10s", "SYM", "Count", "Forecast") + "  │"
	bar := strings.Repeat("─", len([]rune(header))-2)

	lines := make([]string, 0, len(rows)+4)
	lines = append(lines, "┌"+bar+"┐", header, "├"+bar+"┤")
	for _, r := range rows {
		sym := r.Symbol
		if r.Held {
			sym = "<" + sym + ">"
		}
		lines = append(lines, "│  "+fmt.Sprintf("%-6s%-8d%10.4f", sym, r.Count, r.Forecast)+"  │")
	}
	lines = append(lines, "└"+bar+"┘")
	return lines
}

// FormatPortfolio returns the paid / profit / stocks total / total worth lines.
func FormatPortfolio(s fund.Summary) []string {
	return []string{
		"Stocks paid   : " + FormatDecimal(s.Cost),
		"Stocks profit : " + FormatDecimal(s.Profit),
		"Stocks total  : " + FormatDecimal(s.StocksTotal),
		"Total worth   : " + FormatDecimal(s.NetWorth),
	}
}

// FormatStatus formats a portfolio summary as a Telegram HTML message.
func FormatStatus(title string, s fund.Summary, change decimal.Decimal, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s</b>\n\n", html.EscapeString(title))
	b.WriteString("<pre>")
	for _, l := range FormatPortfolio(s) {
		b.WriteString(l + "\n")
	}
	b.WriteString("</pre>")
	fmt.Fprintf(&b, "Open positions: %d\n", s.Positions)
	fmt.Fprintf(&b, "Session change: %s\n", FormatDecimal(change))
	if !at.IsZero() {
		fmt.Fprintf(&b, "Updated: %s (%s)\n", at.Format("2006-01-02 15:04:05"), humanize.Time(at))
	}
	return b.String()
}

// FormatForecastMessage wraps the forecast table for Telegram.
func FormatForecastMessage(rows []ForecastRow) string {
	if len(rows) == 0 {
		return "No market data yet."
	}
	return "<pre>" + html.EscapeString(strings.Join(FormatForecastTable(rows), "\n")) + "</pre>"
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
