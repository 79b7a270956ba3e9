package model

import "time"

// Trade is the simulated outcome of one breakout event.
type Trade struct {
	EntryDate   time.Time `json:"entry_date"`
	EntryPrice  float64   `json:"entry_price"`
	ExitDate    time.Time `json:"exit_date"`
	ExitPrice   float64   `json:"exit_price"`
	ReturnPct   float64   `json:"return_pct"`
	VolumeRatio float64   `json:"volume_ratio"`
	HoldingBars int       `json:"holding_bars"` // effective bars held after exit clamping
}

// SummaryStats aggregates a trade list. The zero value is the empty summary.
type SummaryStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinRate       float64 `json:"win_rate"`
	AverageReturn float64 `json:"average_return"`
	MaxReturn     float64 `json:"max_return"`
	MinReturn     float64 `json:"min_return"`
	StdDev        float64 `json:"std_dev"`
}

// HistogramBin is one equal-width bucket of the return distribution.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Report is the full output of one analysis run.
type Report struct {
	RunID       string         `json:"run_id"`
	Trigger     TriggerType    `json:"trigger"`
	Params      Params         `json:"params"`
	Source      string         `json:"source"`
	BarsFetched int            `json:"bars_fetched"`
	FirstBar    time.Time      `json:"first_bar"`
	LastBar     time.Time      `json:"last_bar"`
	Summary     SummaryStats   `json:"summary"`
	Trades      []Trade        `json:"trades"`
	Warnings    []string       `json:"warnings,omitempty"`
	Histogram   []HistogramBin `json:"histogram,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Stored      bool           `json:"-"` // persisted under RunID
}

// NoBreakouts reports whether the run completed without any trade.
func (r *Report) NoBreakouts() bool { return len(r.Trades) == 0 }

// ReturnPcts extracts the return column of the trade list.
func (r *Report) ReturnPcts() []float64 {
	out := make([]float64, len(r.Trades))
	for i, t := range r.Trades {
		out[i] = t.ReturnPct
	}
	return out
}
