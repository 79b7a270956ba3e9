package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"BreakoutLab/internal/calculator"
	"BreakoutLab/internal/model"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func makeBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   100,
			High:   100,
			Low:    100,
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

// spike marks bar i as a breakout: 3x volume and the given close, carried forward.
func spike(bars []model.Bar, i int, close float64) {
	bars[i].Volume = 3000
	for j := i; j < len(bars); j++ {
		bars[j].Close = close
	}
}

func features(t *testing.T, bars []model.Bar) []model.FeatureRow {
	t.Helper()
	rows, err := calculator.BuildFeatures(bars)
	if err != nil {
		t.Fatalf("build features: %v", err)
	}
	return rows
}

func defaultParams(hold int) model.BacktestParams {
	return model.BacktestParams{VolumeThreshold: 200, PriceThreshold: 2.0, HoldingPeriod: hold}
}

func TestBacktest_EndToEndExample(t *testing.T) {
	bars := makeBars(25)
	spike(bars, 20, 103)

	res := Backtest(features(t, bars), defaultParams(3))
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	tr := res.Trades[0]
	if !tr.EntryDate.Equal(bars[20].Date) {
		t.Errorf("entry date: expected %s, got %s", bars[20].Date, tr.EntryDate)
	}
	if !tr.ExitDate.Equal(bars[23].Date) {
		t.Errorf("exit date: expected %s, got %s", bars[23].Date, tr.ExitDate)
	}
	if tr.EntryPrice != 103 || tr.ExitPrice != 103 || tr.ReturnPct != 0 {
		t.Errorf("unexpected prices: %+v", tr)
	}
	if tr.VolumeRatio != 2.73 {
		t.Errorf("expected volume ratio 2.73, got %v", tr.VolumeRatio)
	}
	if tr.HoldingBars != 3 {
		t.Errorf("expected 3 holding bars, got %d", tr.HoldingBars)
	}
}

func TestBacktest_ClampAtLastIndex(t *testing.T) {
	bars := makeBars(21)
	spike(bars, 20, 103)

	res := Backtest(features(t, bars), defaultParams(10))
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	tr := res.Trades[0]
	if !tr.ExitDate.Equal(tr.EntryDate) {
		t.Errorf("expected exit on entry day, got %s", tr.ExitDate)
	}
	if tr.ReturnPct != 0 || tr.HoldingBars != 0 {
		t.Errorf("expected zero return and holding, got %+v", tr)
	}
}

func TestBacktest_ShortenedHoldingNearEnd(t *testing.T) {
	bars := makeBars(23)
	spike(bars, 20, 103)
	bars[22].Close = 113.3

	res := Backtest(features(t, bars), defaultParams(10))
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	tr := res.Trades[0]
	if !tr.ExitDate.Equal(bars[22].Date) || tr.HoldingBars != 2 {
		t.Errorf("expected clamp to last bar, got %+v", tr)
	}
	if tr.ReturnPct != 10 {
		t.Errorf("expected 10%% return, got %v", tr.ReturnPct)
	}
}

func TestBacktest_OverlappingTradesRetained(t *testing.T) {
	bars := makeBars(30)
	spike(bars, 20, 103)
	spike(bars, 21, 106.09)

	res := Backtest(features(t, bars), defaultParams(5))
	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}
	first, second := res.Trades[0], res.Trades[1]
	if !first.EntryDate.Equal(bars[20].Date) || !second.EntryDate.Equal(bars[21].Date) {
		t.Fatalf("unexpected entry dates %s, %s", first.EntryDate, second.EntryDate)
	}
	if !second.EntryDate.Before(first.ExitDate) {
		t.Error("expected holding windows to overlap")
	}
	if first.ReturnPct != 3 {
		t.Errorf("expected first trade return 3, got %v", first.ReturnPct)
	}
}

func TestBacktest_Idempotent(t *testing.T) {
	bars := makeBars(40)
	spike(bars, 20, 103)
	spike(bars, 30, 110)
	rows := features(t, bars)
	p := defaultParams(4)

	a := Backtest(rows, p)
	b := Backtest(rows, p)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("backtest is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestBacktest_FaultyRowIsolated(t *testing.T) {
	bars := makeBars(30)
	spike(bars, 20, 103)
	bars[23].Close = 0
	spike(bars, 26, 106.09)
	for j := 24; j < 26; j++ {
		bars[j].Close = 103
	}

	res := Backtest(features(t, bars), defaultParams(3))
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	w := res.Warnings[0]
	if !w.Date.Equal(bars[20].Date) || !errors.Is(w.Err, ErrBadExitPrice) {
		t.Errorf("unexpected warning: %s", w)
	}
	if len(res.Trades) != 1 || !res.Trades[0].EntryDate.Equal(bars[26].Date) {
		t.Fatalf("expected the later breakout to still trade, got %+v", res.Trades)
	}
}

func TestBacktest_FromRestrictsFlagging(t *testing.T) {
	bars := makeBars(30)
	spike(bars, 20, 103)
	p := defaultParams(3)
	p.From = bars[21].Date

	res := Backtest(features(t, bars), p)
	if len(res.Trades) != 0 {
		t.Errorf("expected breakout before From to be ignored, got %+v", res.Trades)
	}
}

func TestBacktest_NoBreakouts(t *testing.T) {
	res := Backtest(features(t, makeBars(30)), defaultParams(3))
	if len(res.Trades) != 0 || len(res.Warnings) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestIsBreakout_Thresholds(t *testing.T) {
	p := defaultParams(1)
	tests := []struct {
		name  string
		ratio *float64
		ret   *float64
		want  bool
	}{
		{"both exceed", model.Float(2.5), model.Float(0.03), true},
		{"ratio at threshold", model.Float(2.0), model.Float(0.03), false},
		{"return at threshold", model.Float(2.5), model.Float(0.02), false},
		{"undefined ratio", nil, model.Float(0.05), false},
		{"undefined return", model.Float(5), nil, false},
	}
	for _, tt := range tests {
		row := model.FeatureRow{VolumeRatio: tt.ratio, DailyReturn: tt.ret}
		if got := IsBreakout(row, p); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestSimulateTrade_Faults(t *testing.T) {
	rows := []model.FeatureRow{
		{Bar: model.Bar{Date: day0, Close: -5}, VolumeRatio: model.Float(3)},
		{Bar: model.Bar{Date: day0.AddDate(0, 0, 1), Close: 10}},
		{Bar: model.Bar{Date: day0.AddDate(0, 0, 2), Close: 10}, VolumeRatio: model.Float(3)},
	}
	if _, err := simulateTrade(rows, 0, 1); !errors.Is(err, ErrBadEntryPrice) {
		t.Errorf("expected ErrBadEntryPrice, got %v", err)
	}
	if _, err := simulateTrade(rows, 1, 1); !errors.Is(err, ErrBadVolumeRatio) {
		t.Errorf("expected ErrBadVolumeRatio, got %v", err)
	}
	if _, err := simulateTrade(rows, 5, 1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := simulateTrade(rows, 2, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTradeWarning_String(t *testing.T) {
	w := TradeWarning{Date: day0, Err: ErrBadExitPrice}
	want := "Could not calculate returns for breakout on 2024-03-01: exit price must be positive and finite"
	if w.String() != want {
		t.Errorf("expected %q, got %q", want, w.String())
	}
}
