package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/pretty"

	"BreakoutLab/internal/app"
	"BreakoutLab/internal/calculator"
	"BreakoutLab/internal/config"
	"BreakoutLab/internal/logging"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/report"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	ticker := flag.String("ticker", "", "stock ticker, e.g. AAPL")
	start := flag.String("start", "", "start date YYYY-MM-DD (default: window_days ago)")
	end := flag.String("end", "", "end date YYYY-MM-DD, exclusive (default: today)")
	volume := flag.Float64("volume", 0, "volume threshold in percent of the 20-day average (default from config)")
	price := flag.Float64("price", -1, "daily price change threshold in percent (default from config)")
	hold := flag.Int("hold", 0, "holding period in trading days (default from config)")
	csvPath := flag.String("csv", "", "write the trade CSV to this path instead of export_dir")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && !isFlagSet("config") {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if *ticker == "" {
		flag.Usage()
		os.Exit(2)
	}

	rec := app.NewRecorder(cfg)
	defer rec.Close()
	a, err := app.NewAnalyzer(cfg, rec)
	if err != nil {
		log.Fatal().Err(err).Msg("init analyzer")
	}

	p := a.WindowParams(*ticker, 0)
	if p.Start, err = parseDate(*start, p.Start); err != nil {
		log.Fatal().Err(err).Msg("invalid -start")
	}
	if p.End, err = parseDate(*end, p.End); err != nil {
		log.Fatal().Err(err).Msg("invalid -end")
	}
	if *volume != 0 {
		p.VolumeThreshold = *volume
	}
	if *price >= 0 {
		p.PriceThreshold = *price
	}
	if *hold != 0 {
		p.HoldingPeriod = *hold
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep, err := a.Run(ctx, p, model.TriggerManual)
	if err != nil {
		if errors.Is(err, calculator.ErrEmptySeries) {
			fmt.Println(report.MsgNoData)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("analysis failed")
	}

	if *asJSON {
		data, err := json.Marshal(rep)
		if err != nil {
			log.Fatal().Err(err).Msg("encode report")
		}
		os.Stdout.Write(pretty.Pretty(data))
	} else if err := report.WriteReport(os.Stdout, rep); err != nil {
		log.Fatal().Err(err).Msg("write report")
	}

	if rep.NoBreakouts() {
		return
	}
	path, err := saveCSV(*csvPath, cfg.ExportDir, rep)
	if err != nil {
		log.Fatal().Err(err).Msg("save csv")
	}
	log.Info().Str("path", path).Msg("trade csv written")
}

func parseDate(v string, def time.Time) (time.Time, error) {
	if v == "" {
		return def, nil
	}
	return time.Parse(model.DateLayout, v)
}

func saveCSV(path, exportDir string, rep *model.Report) (string, error) {
	if path == "" {
		return report.SaveCSV(exportDir, rep)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := report.WriteCSV(f, rep.Trades); err != nil {
		return "", err
	}
	return path, f.Close()
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
