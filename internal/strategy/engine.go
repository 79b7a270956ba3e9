package strategy

import (
	"fmt"
	"time"

	"BreakoutLab/internal/model"
)

// TradeWarning records a breakout that could not be turned into a trade.
type TradeWarning struct {
	Date time.Time
	Err  error
}

func (w TradeWarning) String() string {
	return fmt.Sprintf("Could not calculate returns for breakout on %s: %v", w.Date.Format(model.DateLayout), w.Err)
}

// Result is the outcome of a backtest: trades in entry order plus skipped breakouts.
type Result struct {
	Trades   []model.Trade
	Warnings []TradeWarning
}

// Breakouts returns the indexes of all rows that satisfy the breakout predicate, ascending.
func Breakouts(rows []model.FeatureRow, p model.BacktestParams) []int {
	var idx []int
	for i, row := range rows {
		if !p.From.IsZero() && row.Date.Before(p.From) {
			continue
		}
		if IsBreakout(row, p) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Backtest simulates one trade per breakout day. Holding periods may overlap;
// every breakout is traded independently. A faulty row is reported as a warning
// and the remaining breakouts are still processed.
func Backtest(rows []model.FeatureRow, p model.BacktestParams) Result {
	var res Result
	if p.HoldingPeriod < 1 {
		return res
	}
	for _, i := range Breakouts(rows, p) {
		trade, err := simulateTrade(rows, i, p.HoldingPeriod)
		if err != nil {
			res.Warnings = append(res.Warnings, TradeWarning{Date: rows[i].Date, Err: err})
			continue
		}
		res.Trades = append(res.Trades, trade)
	}
	return res
}
