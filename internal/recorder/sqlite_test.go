package recorder

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TickTrader/internal/fund"
	"TickTrader/internal/model"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "journal.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func count(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSQLiteRecorder_Journal(t *testing.T) {
	r := openTestRecorder(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordRun(&Run{ID: "run-1", Mode: "basic", Source: "paper", StartedAt: now}))

	snaps := []model.Snapshot{
		{Symbol: "ECP", Time: now, AskPrice: 10, BidPrice: 9, Forecast: 0.7, LongShares: 5},
		{Symbol: "JGN", Time: now, AskPrice: 20, BidPrice: 19, Forecast: 0.3},
	}
	require.NoError(t, r.RecordSnapshots("run-1", 1, snaps))
	require.NoError(t, r.RecordSnapshots("run-1", 2, nil))

	orders := []model.Order{
		{ID: "01A", Symbol: "ECP", Side: model.SideBuy, Shares: 10, Price: 10, Time: now},
		{ID: "01B", Symbol: "JGN", Side: model.SideShort, Shares: 4, Price: 19, Time: now, Err: errors.New("insufficient funds")},
	}
	require.NoError(t, r.RecordOrders("run-1", 1, orders))

	sum := fund.Summary{Cost: decimal.NewFromInt(1000), Profit: decimal.RequireFromString("200.5"), NetWorth: decimal.NewFromInt(5000)}
	require.NoError(t, r.RecordPortfolio("run-1", &PortfolioEntry{Kind: KindTick, Tick: 1, Time: now, Summary: sum}))

	assert.Equal(t, 1, count(t, r, "runs"))
	assert.Equal(t, 2, count(t, r, "snapshots"))
	assert.Equal(t, 2, count(t, r, "orders"))
	assert.Equal(t, 1, count(t, r, "portfolio"))

	var errText *string
	require.NoError(t, r.db.QueryRow("SELECT error FROM orders WHERE id = '01A'").Scan(&errText))
	assert.Nil(t, errText)
	require.NoError(t, r.db.QueryRow("SELECT error FROM orders WHERE id = '01B'").Scan(&errText))
	require.NotNil(t, errText)
	assert.Equal(t, "insufficient funds", *errText)

	var profit string
	require.NoError(t, r.db.QueryRow("SELECT profit FROM portfolio").Scan(&profit))
	assert.Equal(t, "200.5", profit)
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.RecordRun(&Run{ID: "a", StartedAt: time.Now()}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 1, count(t, r, "runs"))
	assert.Error(t, r.RecordRun(&Run{ID: "a", StartedAt: time.Now()}), "run ids are unique")
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&Run{}))
	assert.NoError(t, r.RecordOrders("x", 1, []model.Order{{}}))
	assert.NoError(t, r.Close())
}
