package strategy

import (
	"errors"
	"fmt"
	"math"

	"BreakoutLab/internal/calculator"
	"BreakoutLab/internal/model"
)

// Per-row faults that exclude a breakout from the results.
var (
	ErrBadEntryPrice   = errors.New("entry price must be positive and finite")
	ErrBadExitPrice    = errors.New("exit price must be positive and finite")
	ErrBadVolumeRatio  = errors.New("volume ratio is undefined or not finite")
	ErrIndexOutOfRange = errors.New("row index out of range")
)

// IsBreakout reports whether a row exceeds both thresholds.
// Rows with an undefined volume ratio or daily return never qualify.
func IsBreakout(row model.FeatureRow, p model.BacktestParams) bool {
	if row.VolumeRatio == nil || row.DailyReturn == nil {
		return false
	}
	return *row.VolumeRatio > p.VolumeThreshold/100 && *row.DailyReturn > p.PriceThreshold/100
}

// exitIndex clamps the exit bar to the last available row.
func exitIndex(entry, holdingPeriod, last int) int {
	if entry+holdingPeriod > last {
		return last
	}
	return entry + holdingPeriod
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// simulateTrade opens a position at the close of rows[i] and exits after the holding period.
func simulateTrade(rows []model.FeatureRow, i, holdingPeriod int) (model.Trade, error) {
	if i < 0 || i >= len(rows) {
		return model.Trade{}, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	entry := rows[i]
	if !validPrice(entry.Close) {
		return model.Trade{}, fmt.Errorf("%w: %v", ErrBadEntryPrice, entry.Close)
	}
	if entry.VolumeRatio == nil || math.IsInf(*entry.VolumeRatio, 0) || math.IsNaN(*entry.VolumeRatio) {
		return model.Trade{}, ErrBadVolumeRatio
	}

	j := exitIndex(i, holdingPeriod, len(rows)-1)
	exit := rows[j]
	if !validPrice(exit.Close) {
		return model.Trade{}, fmt.Errorf("%w: %v on %s", ErrBadExitPrice, exit.Close, exit.Date.Format(model.DateLayout))
	}

	ret := (exit.Close - entry.Close) / entry.Close * 100
	return model.Trade{
		EntryDate:   entry.Date,
		EntryPrice:  calculator.Round2(entry.Close),
		ExitDate:    exit.Date,
		ExitPrice:   calculator.Round2(exit.Close),
		ReturnPct:   calculator.Round2(ret),
		VolumeRatio: calculator.Round2(*entry.VolumeRatio),
		HoldingBars: j - i,
	}, nil
}
