package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/model"
)

// DefaultLookbackDays is the calendar-day buffer fetched ahead of the requested
// start so the 20-day volume average is defined from the first requested day.
const DefaultLookbackDays = 30

// FetchError wraps any provider failure: unreachable, timeout or malformed response.
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Symbol, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MockFetcher returns deterministic synthetic data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.Bar
	Err       error
	Calendar  *TradingCalendar
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		var out []model.Bar
		for _, b := range m.DailyData {
			if !b.Date.Before(start) && b.Date.Before(end) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	cal := m.Calendar
	if cal == nil {
		cal = CalendarFor(symbol)
	}
	return generateMockBars(symbol, m.Price, cal.TradingDays(start, end)), nil
}

// generateMockBars produces a random walk seeded by the symbol, with occasional
// volume and price spikes so breakouts appear.
func generateMockBars(symbol string, basePrice float64, days []time.Time) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	bars := make([]model.Bar, len(days))
	p := basePrice
	for i, d := range days {
		change := rng.NormFloat64() * 0.012
		volume := 1_000_000 * (0.8 + 0.4*rng.Float64())
		if rng.Float64() < 0.04 {
			change = 0.02 + 0.04*rng.Float64()
			volume *= 2.5 + 2*rng.Float64()
		}
		open := p
		p = math.Max(p*(1+change), 0.01)
		bars[i] = model.Bar{
			Date:   d,
			Open:   open,
			High:   math.Max(open, p) * 1.005,
			Low:    math.Min(open, p) * 0.995,
			Close:  p,
			Volume: math.Round(volume),
		}
	}
	return bars
}

// Collector wraps a Fetcher with the lookback buffer, timeout and series cleanup.
type Collector struct {
	Fetcher      Fetcher
	LookbackDays int
	Timeout      time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, lookbackDays int, timeout time.Duration) *Collector {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Collector{Fetcher: fetcher, LookbackDays: lookbackDays, Timeout: timeout}
}

// AdjustedStart is the first calendar day requested from the provider.
func (c *Collector) AdjustedStart(start time.Time) time.Time {
	return start.AddDate(0, 0, -c.LookbackDays)
}

// Fetch loads daily bars for [start-lookback, end). Any provider failure,
// including the timeout expiring, is returned as a *FetchError.
func (c *Collector) Fetch(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	from := c.AdjustedStart(start)

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, from, end)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, &FetchError{Source: c.Fetcher.Name(), Symbol: symbol, Err: err}
	}

	bars = normalizeBars(bars)
	series := &model.PriceSeries{
		Symbol:    symbol,
		Source:    c.Fetcher.Name(),
		Bars:      bars,
		FetchedAt: time.Now(),
	}
	log.Debug().Str("symbol", symbol).Str("source", series.Source).
		Str("from", from.Format(model.DateLayout)).Str("to", end.Format(model.DateLayout)).
		Int("bars", len(bars)).Msg("fetched daily bars")

	checkCoverage(symbol, bars, from, end)
	return series, nil
}

// normalizeBars sorts ascending and keeps the last bar of any duplicated date.
func normalizeBars(bars []model.Bar) []model.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// checkCoverage warns when the provider returned clearly fewer sessions than the
// exchange calendar expects; gaps shift the rolling window.
func checkCoverage(symbol string, bars []model.Bar, from, end time.Time) {
	if len(bars) == 0 {
		return
	}
	expected := len(CalendarFor(symbol).TradingDays(from, end))
	missing := expected - len(bars)
	if expected > 0 && missing > expected/10 {
		log.Warn().Str("symbol", symbol).Int("expected", expected).Int("received", len(bars)).
			Msg("price series has missing sessions")
	}
}
