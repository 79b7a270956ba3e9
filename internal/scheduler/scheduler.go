package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/analyzer"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/notifier"
	"BreakoutLab/internal/recorder"
)

// maxCommandDays bounds the window a chat command may request.
const maxCommandDays = 3650

// Notifier is the delivery side used by scheduled runs.
type Notifier interface {
	notifier.Sender
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages the cron tasks and chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Analyzer
	Notifier  Notifier
	Recorder  recorder.Recorder
	Watchlist []string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, a *analyzer.Analyzer, n Notifier, rec recorder.Recorder, watchlist []string) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyzer:  a,
		Notifier:  n,
		Recorder:  rec,
		Watchlist: watchlist,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily watchlist task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("watchlist", len(s.Watchlist)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunDailyNow executes the daily task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

// dailyTask backtests every watchlist ticker over the default window. One failing
// ticker does not stop the others.
func (s *Scheduler) dailyTask() {
	log.Info().Strs("tickers", s.Watchlist).Msg("running daily watchlist task")
	for _, ticker := range s.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.runTicker(ticker, 0, model.TriggerSchedule))
	}
}

func (s *Scheduler) runTicker(ticker string, days int, trigger model.TriggerType) string {
	p := s.Analyzer.WindowParams(ticker, days)
	rep, err := s.Analyzer.Run(s.Ctx, p, trigger)
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("analysis failed")
		return notifier.FormatFailure(strings.ToUpper(ticker), err)
	}
	return notifier.FormatReport(rep)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Strip a bot mention such as /breakout@lab_bot.
	cmd := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])

	switch cmd {
	case "/breakout":
		ticker, days, err := parseBreakoutArgs(fields[1:])
		if err != nil {
			return err.Error() + "\n\n" + notifier.FormatHelp()
		}
		return s.runTicker(ticker, days, model.TriggerTelegram)
	case "/runs":
		runs, err := s.Recorder.RecentRuns(10)
		if err != nil {
			log.Error().Err(err).Msg("load recent runs")
			return "Could not load recent runs."
		}
		return notifier.FormatRuns(runs)
	default:
		return notifier.FormatHelp()
	}
}

// parseBreakoutArgs parses "TICKER [days]".
func parseBreakoutArgs(args []string) (string, int, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", 0, fmt.Errorf("usage: /breakout TICKER [days]")
	}
	days := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 || n > maxCommandDays {
			return "", 0, fmt.Errorf("days must be a number between 1 and %d", maxCommandDays)
		}
		days = n
	}
	return strings.ToUpper(args[0]), days, nil
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
