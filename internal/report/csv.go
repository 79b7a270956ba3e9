package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"BreakoutLab/internal/model"
)

// CSVHeader is the column layout of the exported trade table.
var CSVHeader = []string{"Entry_Date", "Entry_Price", "Exit_Date", "Exit_Price", "Return_Pct", "Volume_Ratio"}

// FileName returns the export file name for a ticker.
func FileName(ticker string) string {
	return fmt.Sprintf("%s_breakout_analysis.csv", strings.ToUpper(ticker))
}

// WriteCSV writes the trade table with a header row.
func WriteCSV(w io.Writer, trades []model.Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range trades {
		rec := []string{
			t.EntryDate.Format(model.DateLayout),
			formatFloat(t.EntryPrice),
			t.ExitDate.Format(model.DateLayout),
			formatFloat(t.ExitPrice),
			formatFloat(t.ReturnPct),
			formatFloat(t.VolumeRatio),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the trade table of r into dir and returns the file path.
func SaveCSV(dir string, r *model.Report) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(r.Params.Ticker))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	if err := WriteCSV(f, r.Trades); err != nil {
		return "", err
	}
	return path, f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
