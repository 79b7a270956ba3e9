package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/analyzer"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/recorder"
	"BreakoutLab/internal/report"
)

type analyzeResponse struct {
	*model.Report
	NoBreakouts bool   `json:"no_breakouts"`
	Message     string `json:"message,omitempty"`
}

func (s *Server) postAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	rep, ok := s.run(c, &req)
	if !ok {
		return
	}
	resp := analyzeResponse{Report: rep, NoBreakouts: rep.NoBreakouts()}
	if resp.NoBreakouts {
		resp.Message = report.MsgNoBreakouts
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getAnalyzeCSV(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return
	}
	rep, ok := s.run(c, &req)
	if !ok {
		return
	}
	writeCSV(c, rep.Params.Ticker, rep.Trades)
}

func writeCSV(c *gin.Context, ticker string, trades []model.Trade) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.FileName(ticker)))
	c.Status(http.StatusOK)
	if err := report.WriteCSV(c.Writer, trades); err != nil {
		log.Error().Err(err).Msg("write csv response")
	}
}

// run executes the analysis and writes the error response itself when it fails.
func (s *Server) run(c *gin.Context, req *analyzeRequest) (*model.Report, bool) {
	p, err := req.params(s.Analyzer)
	if err == nil {
		var rep *model.Report
		rep, err = s.Analyzer.Run(c.Request.Context(), p, model.TriggerWeb)
		if err == nil {
			return rep, true
		}
	}
	status, msg := errorResponse(err)
	c.JSON(status, gin.H{"error": msg, "kind": analyzer.Classify(err)})
	return nil, false
}

func errorResponse(err error) (int, string) {
	switch analyzer.Classify(err) {
	case "invalid_params":
		return http.StatusBadRequest, err.Error()
	case "fetch_error":
		return http.StatusBadGateway, err.Error()
	case "empty_series":
		return http.StatusNotFound, report.MsgNoData
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) getRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
		return
	}
	runs, err := s.Recorder.RecentRuns(limit)
	if err != nil {
		log.Error().Err(err).Msg("load recent runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load runs"})
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// loadRun reads a stored run and its trades, writing the error response itself on failure.
func (s *Server) loadRun(c *gin.Context) (*recorder.RunSummary, []model.Trade, bool) {
	id := c.Param("id")
	run, err := s.Recorder.Run(id)
	if err == nil {
		var trades []model.Trade
		if trades, err = s.Recorder.Trades(id); err == nil {
			if trades == nil {
				trades = []model.Trade{}
			}
			return run, trades, true
		}
	}
	if errors.Is(err, recorder.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return nil, nil, false
	}
	log.Error().Err(err).Str("run", id).Msg("load run")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load run"})
	return nil, nil, false
}

func (s *Server) getRunTrades(c *gin.Context) {
	run, trades, ok := s.loadRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "trades": trades})
}

func (s *Server) getRunTradesCSV(c *gin.Context) {
	run, trades, ok := s.loadRun(c)
	if !ok {
		return
	}
	writeCSV(c, run.Ticker, trades)
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": s.Analyzer.Collector.Fetcher.Name(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// getIndex renders the form and, when a ticker was submitted, the analysis result.
func (s *Server) getIndex(c *gin.Context) {
	var req analyzeRequest
	bindErr := c.ShouldBindQuery(&req)
	defaults := s.Analyzer.WindowParams("", 0)
	view := pageView{
		Ticker:          req.Ticker,
		StartDate:       orDefault(req.StartDate, defaults.Start.Format(model.DateLayout)),
		EndDate:         orDefault(req.EndDate, defaults.End.Format(model.DateLayout)),
		VolumeThreshold: defaults.VolumeThreshold,
		PriceThreshold:  defaults.PriceThreshold,
		HoldingPeriod:   defaults.HoldingPeriod,
	}
	if req.VolumeThreshold != nil {
		view.VolumeThreshold = *req.VolumeThreshold
	}
	if req.PriceThreshold != nil {
		view.PriceThreshold = *req.PriceThreshold
	}
	if req.HoldingPeriod != nil {
		view.HoldingPeriod = *req.HoldingPeriod
	}

	switch {
	case bindErr != nil:
		view.Ticker = c.Query("ticker")
		view.Error = "invalid query: " + bindErr.Error()
	case req.Ticker != "":
		p, err := req.params(s.Analyzer)
		if err == nil {
			view.Report, err = s.Analyzer.Run(c.Request.Context(), p, model.TriggerWeb)
		}
		if err != nil {
			_, view.Error = errorResponse(err)
		} else if view.Report.NoBreakouts() {
			view.Info = report.MsgNoBreakouts
		}
		if view.Report != nil {
			view.CSVURL = csvURL(view.Report, c.Request.URL.RawQuery)
			view.Bars = histogramBars(view.Report.Histogram)
		}
	}
	c.HTML(http.StatusOK, "index", view)
}

// csvURL points at the stored run when there is one, so the download does not rerun the analysis.
func csvURL(rep *model.Report, rawQuery string) template.URL {
	if rep.Stored {
		return template.URL("/api/runs/" + url.PathEscape(rep.RunID) + "/trades.csv")
	}
	return template.URL("/api/analyze.csv?" + rawQuery)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
