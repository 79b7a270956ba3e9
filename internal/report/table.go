package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"BreakoutLab/internal/model"
)

const (
	MsgNoData      = "No data available for the selected date range."
	MsgNoBreakouts = "No breakout conditions found for the given parameters."
)

// WriteSummary renders the summary statistics as a one-row table.
func WriteSummary(w io.Writer, s model.SummaryStats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Total_Trades\tWin_Rate\tAverage_Return\tMax_Return\tMin_Return\tStd_Dev\t")
	fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
		s.TotalTrades, s.WinRate, s.AverageReturn, s.MaxReturn, s.MinReturn, s.StdDev)
	return tw.Flush()
}

// WriteTrades renders the detailed trade table.
func WriteTrades(w io.Writer, trades []model.Trade) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(CSVHeader, "\t")+"\t")
	for _, t := range trades {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t\n",
			t.EntryDate.Format(model.DateLayout), t.EntryPrice,
			t.ExitDate.Format(model.DateLayout), t.ExitPrice,
			t.ReturnPct, t.VolumeRatio)
	}
	return tw.Flush()
}

// WriteHistogram renders the return distribution as horizontal bars.
func WriteHistogram(w io.Writer, bins []model.HistogramBin) error {
	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	for _, b := range bins {
		width := 0
		if maxCount > 0 {
			width = b.Count * 40 / maxCount
		}
		if _, err := fmt.Fprintf(w, "%8.2f .. %8.2f | %-40s %d\n", b.Lower, b.Upper, strings.Repeat("#", width), b.Count); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport renders the full text report of a run.
func WriteReport(w io.Writer, r *model.Report) error {
	fmt.Fprintf(w, "Stock Breakout Analysis: %s  %s -> %s  (%d bars from %s)\n\n",
		r.Params.Ticker, r.Params.Start.Format(model.DateLayout), r.Params.End.Format(model.DateLayout),
		r.BarsFetched, r.Source)
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", msg)
	}
	if r.NoBreakouts() {
		_, err := fmt.Fprintln(w, MsgNoBreakouts)
		return err
	}

	fmt.Fprintln(w, "Summary Statistics")
	if err := WriteSummary(w, r.Summary); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nDetailed Trade Results")
	if err := WriteTrades(w, r.Trades); err != nil {
		return err
	}
	fmt.Fprintln(w, "\nDistribution of Returns (%)")
	return WriteHistogram(w, r.Histogram)
}
