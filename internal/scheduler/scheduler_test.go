package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"BreakoutLab/internal/analyzer"
	"BreakoutLab/internal/collector"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/recorder"
)

type captureNotifier struct{ sent []string }

func (c *captureNotifier) Send(text string) error {
	c.sent = append(c.sent, text)
	return nil
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	return c.Send(text)
}

type staticRecorder struct {
	recorder.NoopRecorder
	runs []recorder.RunSummary
}

func (s *staticRecorder) RecentRuns(int) ([]recorder.RunSummary, error) { return s.runs, nil }

var today = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

func newScheduler(t *testing.T, f collector.Fetcher, rec recorder.Recorder) (*Scheduler, *captureNotifier) {
	t.Helper()
	a := analyzer.New(collector.NewCollector(f, 30, time.Second), nil, true,
		analyzer.Defaults{VolumeThreshold: 200, PriceThreshold: 2, HoldingPeriod: 10, WindowDays: 365})
	a.Now = func() time.Time { return today }
	n := &captureNotifier{}
	return NewScheduler(context.Background(), a, n, rec, []string{"AAPL", "MSFT"}), n
}

func TestParseBreakoutArgs(t *testing.T) {
	tests := []struct {
		args    []string
		ticker  string
		days    int
		wantErr bool
	}{
		{[]string{"aapl"}, "AAPL", 0, false},
		{[]string{"msft", "90"}, "MSFT", 90, false},
		{nil, "", 0, true},
		{[]string{"aapl", "x"}, "", 0, true},
		{[]string{"aapl", "0"}, "", 0, true},
		{[]string{"aapl", "90", "extra"}, "", 0, true},
	}
	for _, tt := range tests {
		ticker, days, err := parseBreakoutArgs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("%v: unexpected error state %v", tt.args, err)
			continue
		}
		if ticker != tt.ticker || days != tt.days {
			t.Errorf("%v: expected %s/%d, got %s/%d", tt.args, tt.ticker, tt.days, ticker, days)
		}
	}
}

func TestHandleCommand_Breakout(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockFetcher{Price: 100, Calendar: &collector.TradingCalendar{}}, nil)
	reply := s.HandleCommand("/breakout@lab_bot aapl 120")
	if !strings.Contains(reply, "AAPL breakout backtest") {
		t.Errorf("unexpected reply:\n%s", reply)
	}
	if !strings.Contains(reply, "2024-02-04") {
		t.Errorf("expected a 120 day window, got:\n%s", reply)
	}
}

func TestHandleCommand_FetchFailure(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockFetcher{Err: context.DeadlineExceeded}, nil)
	reply := s.HandleCommand("/breakout TSLA")
	if !strings.HasPrefix(reply, "❌ <b>TSLA</b>") {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestHandleCommand_RunsAndHelp(t *testing.T) {
	rec := &staticRecorder{runs: []recorder.RunSummary{{Ticker: "NVDA", Trigger: model.TriggerSchedule}}}
	s, _ := newScheduler(t, &collector.MockFetcher{}, rec)

	if reply := s.HandleCommand("/runs"); !strings.Contains(reply, "NVDA") {
		t.Errorf("unexpected runs reply %q", reply)
	}
	for _, cmd := range []string{"/help", "hello", "", "/breakout"} {
		if reply := s.HandleCommand(cmd); !strings.Contains(reply, "/breakout TICKER [days]") {
			t.Errorf("%q: expected help text, got %q", cmd, reply)
		}
	}
}

func TestDailyTask_NotifiesEveryTicker(t *testing.T) {
	s, n := newScheduler(t, &collector.MockFetcher{Price: 50, Calendar: &collector.TradingCalendar{}}, nil)
	s.RunDailyNow()
	if len(n.sent) != 2 {
		t.Fatalf("expected one message per ticker, got %d", len(n.sent))
	}
	if !strings.Contains(n.sent[0], "AAPL") || !strings.Contains(n.sent[1], "MSFT") {
		t.Errorf("unexpected messages %v", n.sent)
	}
}

func TestRegisterAll_InvalidCron(t *testing.T) {
	s, _ := newScheduler(t, &collector.MockFetcher{}, nil)
	if err := s.RegisterAll("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
	if err := s.RegisterAll("0 30 22 * * 1-5"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
