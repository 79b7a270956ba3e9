package performance

import (
	"testing"

	"BreakoutLab/internal/model"
)

func trades(returns ...float64) []model.Trade {
	out := make([]model.Trade, len(returns))
	for i, r := range returns {
		out[i] = model.Trade{ReturnPct: r}
	}
	return out
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	if got != (model.SummaryStats{}) {
		t.Errorf("expected zero summary, got %+v", got)
	}
}

func TestSummarize_SingleTrade(t *testing.T) {
	got := Summarize(trades(5.0))
	want := model.SummaryStats{
		TotalTrades:   1,
		WinRate:       100,
		AverageReturn: 5,
		MaxReturn:     5,
		MinReturn:     5,
		StdDev:        0,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSummarize_Mixed(t *testing.T) {
	got := Summarize(trades(4, -2, 0, 6))
	if got.TotalTrades != 4 {
		t.Errorf("expected 4 trades, got %d", got.TotalTrades)
	}
	// zero return is not a win
	if got.WinRate != 50 {
		t.Errorf("expected win rate 50, got %v", got.WinRate)
	}
	if got.AverageReturn != 2 {
		t.Errorf("expected average 2, got %v", got.AverageReturn)
	}
	if got.MaxReturn != 6 || got.MinReturn != -2 {
		t.Errorf("unexpected extremes: max %v min %v", got.MaxReturn, got.MinReturn)
	}
	// sample variance: (4+16+4+16)/3 = 13.333..., sqrt = 3.6515
	if got.StdDev != 3.65 {
		t.Errorf("expected std dev 3.65, got %v", got.StdDev)
	}
}

func TestSummarize_Rounding(t *testing.T) {
	got := Summarize(trades(1, 1, 2))
	if got.WinRate != 100 {
		t.Errorf("expected win rate 100, got %v", got.WinRate)
	}
	if got.AverageReturn != 1.33 {
		t.Errorf("expected average 1.33, got %v", got.AverageReturn)
	}
	if got.StdDev != 0.58 {
		t.Errorf("expected std dev 0.58, got %v", got.StdDev)
	}
}

func TestSummarize_AllLosses(t *testing.T) {
	got := Summarize(trades(-1.5, -3.25))
	if got.WinRate != 0 {
		t.Errorf("expected win rate 0, got %v", got.WinRate)
	}
	if got.MaxReturn != -1.5 || got.MinReturn != -3.25 {
		t.Errorf("unexpected extremes: %+v", got)
	}
}
