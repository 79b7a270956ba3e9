package calculator

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Round2 rounds the exact binary value of v to two decimals, half to even,
// so 1.015 (stored as 1.01499...) gives 1.01. NaN and Inf are returned unchanged.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 40, 64))
	if err != nil {
		return math.RoundToEven(v*100) / 100
	}
	return d.RoundBank(2).InexactFloat64()
}
