package server

import (
	"html/template"

	"BreakoutLab/internal/model"
)

type pageView struct {
	Ticker          string
	StartDate       string
	EndDate         string
	VolumeThreshold float64
	PriceThreshold  float64
	HoldingPeriod   int
	Report          *model.Report
	Error           string
	Info            string
	CSVURL          template.URL
	Bars            []histogramBar
}

type histogramBar struct {
	model.HistogramBin
	Width int // percent of the tallest bin
}

func histogramBars(bins []model.HistogramBin) []histogramBar {
	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	out := make([]histogramBar, len(bins))
	for i, b := range bins {
		out[i].HistogramBin = b
		if maxCount > 0 {
			out[i].Width = b.Count * 100 / maxCount
		}
	}
	return out
}

var pageTemplate = template.Must(template.New("page").Parse(`{{define "index"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Stock Breakout Analysis</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
td, th { border: 1px solid #ccc; padding: 4px 8px; text-align: right; }
.error { color: #b00020; } .info { color: #1565c0; } .warn { color: #a66300; }
.bar { background: #4a90d9; height: 12px; }
</style>
</head>
<body>
<h1>Stock Breakout Analysis</h1>
<form method="get" action="/">
  <label>Ticker <input name="ticker" value="{{.Ticker}}" required></label>
  <label>Start <input type="date" name="start_date" value="{{.StartDate}}"></label>
  <label>End <input type="date" name="end_date" value="{{.EndDate}}"></label>
  <label>Volume threshold (%) <input type="number" name="volume_threshold" min="100" step="10" value="{{.VolumeThreshold}}"></label>
  <label>Price change threshold (%) <input type="number" name="price_threshold" min="0" step="0.1" value="{{.PriceThreshold}}"></label>
  <label>Holding period (days) <input type="number" name="holding_period" min="1" value="{{.HoldingPeriod}}"></label>
  <button type="submit">Analyze</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{with .Report}}
  {{range .Warnings}}<p class="warn">{{.}}</p>{{end}}
{{end}}
{{if .Info}}<p class="info">{{.Info}}</p>{{end}}
{{if and .Report (not .Info)}}{{with .Report}}
<h2>Summary Statistics</h2>
<table>
<tr><th>Total_Trades</th><th>Win_Rate</th><th>Average_Return</th><th>Max_Return</th><th>Min_Return</th><th>Std_Dev</th></tr>
<tr><td>{{.Summary.TotalTrades}}</td><td>{{printf "%.2f" .Summary.WinRate}}</td><td>{{printf "%.2f" .Summary.AverageReturn}}</td><td>{{printf "%.2f" .Summary.MaxReturn}}</td><td>{{printf "%.2f" .Summary.MinReturn}}</td><td>{{printf "%.2f" .Summary.StdDev}}</td></tr>
</table>
<h2>Detailed Trade Results</h2>
<table>
<tr><th>Entry_Date</th><th>Entry_Price</th><th>Exit_Date</th><th>Exit_Price</th><th>Return_Pct</th><th>Volume_Ratio</th></tr>
{{range .Trades}}<tr><td>{{.EntryDate.Format "2006-01-02"}}</td><td>{{printf "%.2f" .EntryPrice}}</td><td>{{.ExitDate.Format "2006-01-02"}}</td><td>{{printf "%.2f" .ExitPrice}}</td><td>{{printf "%.2f" .ReturnPct}}</td><td>{{printf "%.2f" .VolumeRatio}}</td></tr>
{{end}}</table>
{{end}}
<p><a href="{{.CSVURL}}">Download CSV</a></p>
<h2>Distribution of Returns (%)</h2>
<table>
{{range .Bars}}<tr><td>{{printf "%.2f" .Lower}} .. {{printf "%.2f" .Upper}}</td><td style="width:300px;text-align:left"><div class="bar" style="width: {{.Width}}%"></div></td><td>{{.Count}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>{{end}}`))
