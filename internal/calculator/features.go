package calculator

import (
	"errors"
	"math"

	"BreakoutLab/internal/model"
)

// ErrEmptySeries is returned when there are no bars to derive features from.
var ErrEmptySeries = errors.New("empty price series")

// BuildFeatures derives the rolling volume average, daily return and volume ratio
// for every bar. The input is not modified.
func BuildFeatures(bars []model.Bar) ([]model.FeatureRow, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}

	volumeMA := RollingMean(extractVolumes(bars), VolumeWindow)
	returns := PctChange(extractCloses(bars))

	rows := make([]model.FeatureRow, len(bars))
	for i, b := range bars {
		rows[i] = model.FeatureRow{
			Bar:         b,
			VolumeMA20:  volumeMA[i],
			DailyReturn: returns[i],
			VolumeRatio: ratio(b.Volume, volumeMA[i]),
		}
	}
	return rows, nil
}

// PctChange returns the fractional change of each value against the previous one.
// The first entry, and any entry whose previous value is zero, is nil.
func PctChange(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			continue
		}
		change := (values[i] - prev) / prev
		if math.IsNaN(change) || math.IsInf(change, 0) {
			continue
		}
		out[i] = model.Float(change)
	}
	return out
}

func ratio(v float64, base *float64) *float64 {
	if base == nil || *base == 0 {
		return nil
	}
	r := v / *base
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return model.Float(r)
}
