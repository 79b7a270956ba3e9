package performance

import (
	"math"

	"BreakoutLab/internal/calculator"
	"BreakoutLab/internal/model"
)

// Summarize aggregates trade outcomes. An empty trade list yields the zero summary.
func Summarize(trades []model.Trade) model.SummaryStats {
	n := len(trades)
	if n == 0 {
		return model.SummaryStats{}
	}

	wins := 0
	sum := 0.0
	maxRet := math.Inf(-1)
	minRet := math.Inf(1)
	for _, t := range trades {
		if t.ReturnPct > 0 {
			wins++
		}
		sum += t.ReturnPct
		maxRet = math.Max(maxRet, t.ReturnPct)
		minRet = math.Min(minRet, t.ReturnPct)
	}
	mean := sum / float64(n)

	return model.SummaryStats{
		TotalTrades:   n,
		WinRate:       calculator.Round2(float64(wins) / float64(n) * 100),
		AverageReturn: calculator.Round2(mean),
		MaxReturn:     calculator.Round2(maxRet),
		MinReturn:     calculator.Round2(minRet),
		StdDev:        calculator.Round2(SampleStdDev(trades, mean)),
	}
}

// SampleStdDev is the n-1 standard deviation of the trade returns around mean.
// It is 0 for fewer than two trades.
func SampleStdDev(trades []model.Trade, mean float64) float64 {
	if len(trades) < 2 {
		return 0
	}
	varianceSum := 0.0
	for _, t := range trades {
		d := t.ReturnPct - mean
		varianceSum += d * d
	}
	return math.Sqrt(varianceSum / float64(len(trades)-1))
}
