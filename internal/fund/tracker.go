package fund

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tracker keeps the latest Summary for readers outside the control loop
// (digest job, chat commands) and the net worth the session started with.
type Tracker struct {
	mu       sync.Mutex
	last     Summary
	at       time.Time
	baseline decimal.Decimal
	started  bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Update stores s as the latest summary. The first update sets the baseline.
func (t *Tracker) Update(s Summary, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		t.baseline = s.NetWorth
		t.started = true
	}
	t.last = s
	t.at = at
}

// Latest returns the last summary and when it was taken. ok is false before
// the first update.
func (t *Tracker) Latest() (s Summary, at time.Time, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last, t.at, t.started
}

// Change returns net worth gained or lost since the first update.
func (t *Tracker) Change() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return decimal.Zero
	}
	return t.last.NetWorth.Sub(t.baseline)
}
