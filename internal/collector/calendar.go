package collector

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// micSuffixes maps ticker suffixes to exchange MIC codes (ISO 10383).
var micSuffixes = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".SW": "xswx",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
}

// TradingCalendar answers which calendar days an exchange is open.
type TradingCalendar struct {
	Calendar *calendar.Calendar
}

// CalendarFor returns the exchange calendar for a ticker, defaulting to NYSE.
// A nil Calendar field means weekdays are treated as sessions.
func CalendarFor(symbol string) *TradingCalendar {
	mic := "xnys"
	for suffix, m := range micSuffixes {
		if strings.HasSuffix(symbol, suffix) {
			mic = m
			break
		}
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}
	return &TradingCalendar{Calendar: cal}
}

// IsTradingDay reports whether day is a session day.
func (tc *TradingCalendar) IsTradingDay(day time.Time) bool {
	if tc == nil || tc.Calendar == nil {
		wd := day.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	// Noon avoids the session date shifting when converted to the exchange zone.
	d := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, tc.Calendar.Loc)
	return tc.Calendar.IsBusinessDay(d)
}

// TradingDays lists the session days in [start, end).
func (tc *TradingCalendar) TradingDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if tc.IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days
}
