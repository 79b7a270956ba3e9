package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/calculator"
	"BreakoutLab/internal/collector"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/performance"
	"BreakoutLab/internal/recorder"
	"BreakoutLab/internal/report"
	"BreakoutLab/internal/strategy"
)

// Defaults are the analysis parameters used when a caller only names a ticker.
type Defaults struct {
	VolumeThreshold float64
	PriceThreshold  float64
	HoldingPeriod   int
	WindowDays      int
}

// Analyzer runs the fetch, feature, backtest and summary pipeline for one ticker.
type Analyzer struct {
	Collector        *collector.Collector
	Recorder         recorder.Recorder
	RestrictToWindow bool
	Defaults         Defaults
	Now              func() time.Time
}

// New creates an Analyzer. A nil recorder disables persistence.
func New(col *collector.Collector, rec recorder.Recorder, restrictToWindow bool, defaults Defaults) *Analyzer {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Analyzer{
		Collector:        col,
		Recorder:         rec,
		RestrictToWindow: restrictToWindow,
		Defaults:         defaults,
		Now:              time.Now,
	}
}

// WindowParams builds parameters for the last days calendar days ending today.
// End is exclusive, so today's bar is left out. A non-positive days uses the default window.
func (a *Analyzer) WindowParams(ticker string, days int) model.Params {
	if days <= 0 {
		days = a.Defaults.WindowDays
	}
	end := model.TruncateDay(a.Now())
	return model.Params{
		Ticker:          ticker,
		Start:           end.AddDate(0, 0, -days),
		End:             end,
		VolumeThreshold: a.Defaults.VolumeThreshold,
		PriceThreshold:  a.Defaults.PriceThreshold,
		HoldingPeriod:   a.Defaults.HoldingPeriod,
	}
}

// Run executes one analysis. It returns model.ErrInvalidParams, a *collector.FetchError
// or calculator.ErrEmptySeries on failure. A run without breakouts is not an error;
// the report then has no trades and a zero summary.
func (a *Analyzer) Run(ctx context.Context, p model.Params, trigger model.TriggerType) (*model.Report, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	logger := log.With().Str("ticker", p.Ticker).Str("trigger", string(trigger)).Logger()

	series, err := a.Collector.Fetch(ctx, p.Ticker, p.Start, p.End)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed")
		return nil, err
	}
	if series.Empty() {
		logger.Warn().Msg(report.MsgNoData)
		return nil, fmt.Errorf("%s %s..%s: %w", p.Ticker,
			p.Start.Format(model.DateLayout), p.End.Format(model.DateLayout), calculator.ErrEmptySeries)
	}

	rows, err := calculator.BuildFeatures(series.Bars)
	if err != nil {
		return nil, err
	}

	result := strategy.Backtest(rows, p.BacktestParams(a.RestrictToWindow))
	rep := &model.Report{
		RunID:       uuid.NewString(),
		Trigger:     trigger,
		Params:      p,
		Source:      series.Source,
		BarsFetched: series.Len(),
		FirstBar:    series.Bars[0].Date,
		LastBar:     series.Bars[series.Len()-1].Date,
		Summary:     performance.Summarize(result.Trades),
		Trades:      result.Trades,
		CreatedAt:   a.Now(),
	}
	if rep.Trades == nil {
		rep.Trades = []model.Trade{}
	}
	for _, w := range result.Warnings {
		logger.Warn().Err(w.Err).Str("date", w.Date.Format(model.DateLayout)).Msg("breakout skipped")
		rep.Warnings = append(rep.Warnings, w.String())
	}
	if rep.NoBreakouts() {
		logger.Info().Msg(report.MsgNoBreakouts)
	} else {
		rep.Histogram = report.Histogram(rep.ReturnPcts(), report.HistogramBins)
	}

	if _, off := a.Recorder.(*recorder.NoopRecorder); !off {
		if err := a.Recorder.RecordRun(recorder.NewRunRecord(rep)); err != nil {
			logger.Error().Err(err).Msg("record run")
		} else {
			rep.Stored = true
		}
	}
	logger.Info().Int("bars", rep.BarsFetched).Int("trades", rep.Summary.TotalTrades).
		Float64("win_rate", rep.Summary.WinRate).Float64("avg_return", rep.Summary.AverageReturn).
		Msg("analysis complete")
	return rep, nil
}

// Classify maps a pipeline error to a short category used by the presentation layers.
func Classify(err error) string {
	var fe *collector.FetchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrInvalidParams):
		return "invalid_params"
	case errors.As(err, &fe):
		return "fetch_error"
	case errors.Is(err, calculator.ErrEmptySeries):
		return "empty_series"
	default:
		return "internal"
	}
}
