package recorder

import "BreakoutLab/internal/model"

// NoopRecorder is a no-op implementation used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error           { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]RunSummary, error) { return nil, nil }
func (n *NoopRecorder) Run(_ string) (*RunSummary, error)      { return nil, ErrRunNotFound }
func (n *NoopRecorder) Trades(_ string) ([]model.Trade, error) { return nil, ErrRunNotFound }
func (n *NoopRecorder) Close() error                           { return nil }
