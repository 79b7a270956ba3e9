package report

import (
	"math"

	"BreakoutLab/internal/model"
)

// HistogramBins is the number of buckets of the return distribution chart.
const HistogramBins = 20

// Histogram splits values into equal-width bins between their minimum and maximum.
// When all values are equal a single bin holds them all.
func Histogram(values []float64, bins int) []model.HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []model.HistogramBin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
