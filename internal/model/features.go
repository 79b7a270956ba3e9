package model

// FeatureRow is a Bar plus the rolling features derived from it.
// A nil feature means the value is undefined for that day.
type FeatureRow struct {
	Bar
	VolumeMA20  *float64 // mean of the trailing 20 volumes, current day included
	DailyReturn *float64 // fractional close-to-close change
	VolumeRatio *float64 // Volume / VolumeMA20
}

// Float returns a pointer to v, for building optional feature values.
func Float(v float64) *float64 { return &v }
