package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/analyzer"
	"BreakoutLab/internal/collector"
	"BreakoutLab/internal/config"
	"BreakoutLab/internal/recorder"
)

// NewFetcher selects the price provider named in the config.
func NewFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy, *ds.Adjusted), nil
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.APIKey, ds.APISecret, ds.BaseURL, *ds.Adjusted), nil
	case "rest":
		return collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy), nil
	case "mock":
		return &collector.MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown data source provider %q", ds.Provider)
	}
}

// NewRecorder opens the configured database, falling back to a no-op recorder
// when it is disabled or cannot be opened.
func NewRecorder(cfg *config.Config) recorder.Recorder {
	var (
		rec recorder.Recorder
		err error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		if err = os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err == nil {
			rec, err = recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		}
	case "postgres":
		rec, err = recorder.NewPostgresRecorder(cfg.Database.DSN)
	default:
		return recorder.NewNoopRecorder()
	}
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Database.Driver).Msg("init recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return rec
}

// NewAnalyzer wires the fetcher, collector and recorder into an Analyzer.
func NewAnalyzer(cfg *config.Config, rec recorder.Recorder) (*analyzer.Analyzer, error) {
	fetcher, err := NewFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Str("source", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, cfg.DataSource.LookbackDays, cfg.FetchTimeout())
	return analyzer.New(col, rec, *cfg.Analysis.RestrictToWindow, analyzer.Defaults{
		VolumeThreshold: cfg.Analysis.VolumeThreshold,
		PriceThreshold:  cfg.Analysis.PriceThreshold,
		HoldingPeriod:   cfg.Analysis.HoldingPeriod,
		WindowDays:      cfg.Analysis.WindowDays,
	}), nil
}
