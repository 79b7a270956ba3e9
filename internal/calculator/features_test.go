package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"BreakoutLab/internal/model"
)

func flatBars(n int, close, volume float64) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: volume,
		}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	if _, err := CalculateSMA([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); err == nil {
		t.Error("expected error for insufficient data")
	}
	got, err := CalculateSMA([]float64{10, 1, 2, 3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
}

func TestRollingMean_NoPartialWindow(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	got := RollingMean(values, 3)
	for i := 0; i < 2; i++ {
		if got[i] != nil {
			t.Errorf("index %d: expected nil, got %v", i, *got[i])
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if got[i+2] == nil || *got[i+2] != w {
			t.Errorf("index %d: expected %v, got %v", i+2, w, got[i+2])
		}
	}
}

func TestBuildFeatures_EmptySeries(t *testing.T) {
	_, err := BuildFeatures(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}

func TestBuildFeatures_ShortSeriesHasNoAverage(t *testing.T) {
	rows, err := BuildFeatures(flatBars(19, 100, 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range rows {
		if r.VolumeMA20 != nil {
			t.Errorf("row %d: expected undefined volume average", i)
		}
		if r.VolumeRatio != nil {
			t.Errorf("row %d: expected undefined volume ratio", i)
		}
	}
}

func TestBuildFeatures_Values(t *testing.T) {
	bars := flatBars(21, 100, 1000)
	bars[20].Volume = 3000
	bars[20].Close = 103

	rows, err := BuildFeatures(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].DailyReturn != nil {
		t.Error("first row must have undefined daily return")
	}
	if rows[19].VolumeMA20 == nil || *rows[19].VolumeMA20 != 1000 {
		t.Fatalf("row 19: expected average 1000, got %v", rows[19].VolumeMA20)
	}
	if rows[19].VolumeRatio == nil || *rows[19].VolumeRatio != 1 {
		t.Errorf("row 19: expected ratio 1, got %v", rows[19].VolumeRatio)
	}

	last := rows[20]
	wantMA := (19*1000.0 + 3000) / 20
	if last.VolumeMA20 == nil || math.Abs(*last.VolumeMA20-wantMA) > 1e-9 {
		t.Errorf("expected average %v, got %v", wantMA, last.VolumeMA20)
	}
	if last.VolumeRatio == nil || math.Abs(*last.VolumeRatio-3000/wantMA) > 1e-9 {
		t.Errorf("unexpected volume ratio %v", last.VolumeRatio)
	}
	if last.DailyReturn == nil || math.Abs(*last.DailyReturn-0.03) > 1e-12 {
		t.Errorf("expected daily return 0.03, got %v", last.DailyReturn)
	}
	if last.Close != 103 || !last.Date.Equal(bars[20].Date) {
		t.Error("feature row must carry the source bar")
	}
}

func TestBuildFeatures_ZeroVolumeBaseline(t *testing.T) {
	bars := flatBars(25, 100, 0)
	rows, err := BuildFeatures(bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range rows {
		if r.VolumeRatio != nil {
			t.Errorf("row %d: expected undefined ratio for zero baseline, got %v", i, *r.VolumeRatio)
		}
	}
	if rows[24].VolumeMA20 == nil || *rows[24].VolumeMA20 != 0 {
		t.Error("zero baseline must still be reported as a defined average")
	}
}

func TestPctChange_ZeroPrevious(t *testing.T) {
	got := PctChange([]float64{0, 5, 10})
	if got[0] != nil || got[1] != nil {
		t.Error("expected undefined change for first value and zero previous value")
	}
	if got[2] == nil || *got[2] != 1 {
		t.Errorf("expected change 1, got %v", got[2])
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.234, 1.23},
		{1.236, 1.24},
		{-2.5551, -2.56},
		{0.125, 0.12},
		{1.015, 1.01},
		{2.675, 2.67},
		{1.005, 1},
		{-1.015, -1.01},
		{3, 3},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
	if !math.IsNaN(Round2(math.NaN())) {
		t.Error("NaN must pass through")
	}
}
