package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidParams is wrapped by every parameter validation failure.
var ErrInvalidParams = errors.New("invalid parameters")

// TriggerType indicates what started an analysis run.
type TriggerType string

const (
	TriggerManual   TriggerType = "MANUAL"
	TriggerWeb      TriggerType = "WEB"
	TriggerSchedule TriggerType = "SCHEDULE"
	TriggerTelegram TriggerType = "TELEGRAM"
)

// Params are the boundary inputs of one analysis run.
type Params struct {
	Ticker          string    `json:"ticker"`
	Start           time.Time `json:"start_date"`
	End             time.Time `json:"end_date"`
	VolumeThreshold float64   `json:"volume_threshold"` // percent of the 20-day average, e.g. 200
	PriceThreshold  float64   `json:"price_threshold"`  // percent daily change, e.g. 2.0
	HoldingPeriod   int       `json:"holding_period"`   // bars
}

// Normalize uppercases the ticker and drops the clock part of both dates.
func (p *Params) Normalize() {
	p.Ticker = strings.ToUpper(strings.TrimSpace(p.Ticker))
	p.Start = TruncateDay(p.Start)
	p.End = TruncateDay(p.End)
}

// Validate checks the boundary constraints of the run parameters.
func (p *Params) Validate() error {
	if p.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidParams)
	}
	if !p.Start.Before(p.End) {
		return fmt.Errorf("%w: start date %s must be before end date %s",
			ErrInvalidParams, p.Start.Format(DateLayout), p.End.Format(DateLayout))
	}
	if p.VolumeThreshold < 100 {
		return fmt.Errorf("%w: volume threshold must be >= 100, got %.2f", ErrInvalidParams, p.VolumeThreshold)
	}
	if p.PriceThreshold < 0 {
		return fmt.Errorf("%w: price threshold must be >= 0, got %.2f", ErrInvalidParams, p.PriceThreshold)
	}
	if p.HoldingPeriod < 1 {
		return fmt.Errorf("%w: holding period must be >= 1, got %d", ErrInvalidParams, p.HoldingPeriod)
	}
	return nil
}

// BacktestParams configures the breakout predicate and trade simulation.
type BacktestParams struct {
	VolumeThreshold float64   // percent, ratio must exceed VolumeThreshold/100
	PriceThreshold  float64   // percent, return must exceed PriceThreshold/100
	HoldingPeriod   int       // bars held after entry
	From            time.Time // rows before From never flag; zero means no restriction
}

// BacktestParams derives the engine parameters from the run parameters.
func (p *Params) BacktestParams(restrictToWindow bool) BacktestParams {
	bp := BacktestParams{
		VolumeThreshold: p.VolumeThreshold,
		PriceThreshold:  p.PriceThreshold,
		HoldingPeriod:   p.HoldingPeriod,
	}
	if restrictToWindow {
		bp.From = p.Start
	}
	return bp
}
