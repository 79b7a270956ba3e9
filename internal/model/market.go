package model

import "time"

// DateLayout is the calendar date format used in reports and exports.
const DateLayout = "2006-01-02"

// Bar represents a single daily OHLCV bar.
type Bar struct {
	Date   time.Time // calendar day, midnight UTC
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the raw daily bars fetched for one symbol, ascending by date.
type PriceSeries struct {
	Symbol    string
	Source    string
	Bars      []Bar
	FetchedAt time.Time
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Empty reports whether the provider returned no bars.
func (s *PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// TruncateDay returns midnight UTC of the calendar day t falls on in its own location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
