package recorder

import "TickTrader/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *Run) error                                      { return nil }
func (n *NoopRecorder) RecordSnapshots(_ string, _ int64, _ []model.Snapshot) error { return nil }
func (n *NoopRecorder) RecordOrders(_ string, _ int64, _ []model.Order) error       { return nil }
func (n *NoopRecorder) RecordPortfolio(_ string, _ *PortfolioEntry) error           { return nil }
func (n *NoopRecorder) Close() error                                                { return nil }
