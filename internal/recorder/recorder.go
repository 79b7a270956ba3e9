package recorder

import (
	"errors"
	"time"

	"BreakoutLab/internal/model"
)

// RunRecord holds all data persisted for one analysis run.
type RunRecord struct {
	ID          string
	Trigger     model.TriggerType
	Params      model.Params
	Source      string
	BarsFetched int
	Summary     model.SummaryStats
	Trades      []model.Trade
	Warnings    int
	CreatedAt   time.Time
}

// NewRunRecord flattens a report into its persisted form.
func NewRunRecord(r *model.Report) *RunRecord {
	return &RunRecord{
		ID:          r.RunID,
		Trigger:     r.Trigger,
		Params:      r.Params,
		Source:      r.Source,
		BarsFetched: r.BarsFetched,
		Summary:     r.Summary,
		Trades:      r.Trades,
		Warnings:    len(r.Warnings),
		CreatedAt:   r.CreatedAt,
	}
}

// RunSummary is one row of the run history.
type RunSummary struct {
	ID            string            `json:"id"`
	Ticker        string            `json:"ticker"`
	Trigger       model.TriggerType `json:"trigger"`
	Start         time.Time         `json:"start_date"`
	End           time.Time         `json:"end_date"`
	TotalTrades   int               `json:"total_trades"`
	WinRate       float64           `json:"win_rate"`
	AverageReturn float64           `json:"average_return"`
	CreatedAt     time.Time         `json:"created_at"`
}

// ErrRunNotFound is returned when a run id is not stored.
var ErrRunNotFound = errors.New("run not found")

// Recorder persists historical runs for later review.
type Recorder interface {
	RecordRun(run *RunRecord) error
	RecentRuns(limit int) ([]RunSummary, error)
	Run(id string) (*RunSummary, error)
	Trades(runID string) ([]model.Trade, error)
	Close() error
}
