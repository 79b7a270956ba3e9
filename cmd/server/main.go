package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/app"
	"BreakoutLab/internal/config"
	"BreakoutLab/internal/logging"
	"BreakoutLab/internal/notifier"
	"BreakoutLab/internal/scheduler"
	"BreakoutLab/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel)
	log.Info().Msg("BreakoutLab starting...")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init recorder and analysis pipeline
	rec := app.NewRecorder(cfg)
	defer rec.Close()
	a, err := app.NewAnalyzer(cfg, rec)
	if err != nil {
		log.Fatal().Err(err).Msg("init analyzer")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Telegram notifier
	var n scheduler.Notifier = notifier.NoopSender{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		if err != nil {
			log.Warn().Err(err).Msg("init telegram failed, notifications disabled")
		} else {
			n = tn
		}
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, a, n, rec, cfg.Watchlist)
	if len(cfg.Watchlist) > 0 {
		if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
			log.Fatal().Err(err).Msg("register cron tasks")
		}
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	// Start HTTP server
	srv := server.New(a, rec, zerolog.GlobalLevel() <= zerolog.DebugLevel)
	go func() {
		if err := srv.Start(cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	log.Info().Str("addr", cfg.Addr()).Msg("BreakoutLab is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("BreakoutLab stopped")
}
