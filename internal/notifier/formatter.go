package notifier

import (
	"fmt"
	"html"
	"strings"

	"BreakoutLab/internal/model"
	"BreakoutLab/internal/recorder"
	"BreakoutLab/internal/report"
)

// maxListedTrades caps the trade list of a message; Telegram rejects texts over 4096 chars.
const maxListedTrades = 15

// FormatReport formats an analysis run into a Telegram HTML message.
func FormatReport(r *model.Report) string {
	var b strings.Builder
	p := r.Params

	b.WriteString(fmt.Sprintf("📊 <b>%s breakout backtest</b> | %s → %s\n",
		html.EscapeString(p.Ticker), p.Start.Format(model.DateLayout), p.End.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Volume &gt; %.0f%% of 20d avg, gain &gt; %.2f%%, hold %d days\n\n",
		p.VolumeThreshold, p.PriceThreshold, p.HoldingPeriod))

	if r.NoBreakouts() {
		b.WriteString(report.MsgNoBreakouts)
		b.WriteString("\n")
	} else {
		s := r.Summary
		b.WriteString("📈 <b>Summary</b>\n")
		b.WriteString(fmt.Sprintf("Trades: %d | Win rate: %.2f%%\n", s.TotalTrades, s.WinRate))
		b.WriteString(fmt.Sprintf("Avg: %+.2f%% | Max: %+.2f%% | Min: %+.2f%% | σ: %.2f\n\n",
			s.AverageReturn, s.MaxReturn, s.MinReturn, s.StdDev))

		b.WriteString("<b>Trades</b>\n<pre>")
		for i, t := range r.Trades {
			if i == maxListedTrades {
				b.WriteString(fmt.Sprintf("… %d more\n", len(r.Trades)-i))
				break
			}
			b.WriteString(fmt.Sprintf("%s %8.2f → %s %8.2f %+7.2f%% x%.2f\n",
				t.EntryDate.Format(model.DateLayout), t.EntryPrice,
				t.ExitDate.Format(model.DateLayout), t.ExitPrice, t.ReturnPct, t.VolumeRatio))
		}
		b.WriteString("</pre>\n")
	}

	if n := len(r.Warnings); n > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d breakout(s) skipped\n", n))
	}
	return b.String()
}

// FormatFailure formats a run that did not complete.
func FormatFailure(ticker string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(ticker), html.EscapeString(err.Error()))
}

// FormatRuns formats the recent run history.
func FormatRuns(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No recorded runs yet."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent runs</b>\n<pre>")
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s %-6s %-9s %3d trades win %6.2f%% avg %+.2f%%\n",
			r.CreatedAt.Format("01-02 15:04"), r.Ticker, r.Trigger, r.TotalTrades, r.WinRate, r.AverageReturn))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "<b>Commands</b>\n" +
		"/breakout TICKER [days] - backtest volume breakouts over the last days\n" +
		"/runs - recent runs\n" +
		"/help - this message"
}
