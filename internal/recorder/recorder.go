package recorder

import (
	"time"

	"TickTrader/internal/fund"
	"TickTrader/internal/model"
)

// Run describes one process run of the control loop.
type Run struct {
	ID        string
	Mode      string // "advanced" or "basic"
	Source    string // market source name
	Liquidate bool
	StartedAt time.Time
}

// Portfolio kinds.
const (
	KindTick        = "TICK"
	KindDigest      = "DIGEST"
	KindLiquidation = "LIQUIDATION"
)

// PortfolioEntry is one portfolio valuation.
type PortfolioEntry struct {
	Kind    string
	Tick    int64
	Time    time.Time
	Summary fund.Summary
}

// Recorder journals what the engine saw and did. Nothing is read back.
type Recorder interface {
	RecordRun(run *Run) error
	RecordSnapshots(runID string, tick int64, snaps []model.Snapshot) error
	RecordOrders(runID string, tick int64, orders []model.Order) error
	RecordPortfolio(runID string, entry *PortfolioEntry) error
	Close() error
}
