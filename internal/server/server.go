package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"BreakoutLab/internal/analyzer"
	"BreakoutLab/internal/model"
	"BreakoutLab/internal/recorder"
)

// Server exposes the analysis pipeline over HTTP.
type Server struct {
	Analyzer *analyzer.Analyzer
	Recorder recorder.Recorder
	engine   *gin.Engine
	http     *http.Server
}

// New builds the gin engine and registers all routes.
func New(a *analyzer.Analyzer, rec recorder.Recorder, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	s := &Server{Analyzer: a, Recorder: rec, engine: gin.New()}
	s.http = &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.engine.SetHTMLTemplate(pageTemplate)
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.getIndex)
	api := s.engine.Group("/api")
	api.POST("/analyze", s.postAnalyze)
	api.GET("/analyze.csv", s.getAnalyzeCSV)
	api.GET("/runs", s.getRuns)
	api.GET("/runs/:id/trades", s.getRunTrades)
	api.GET("/runs/:id/trades.csv", s.getRunTradesCSV)
	api.GET("/health", s.getHealth)
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start listens on addr and blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	log.Info().Str("addr", addr).Msg("starting http server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().Str("method", c.Request.Method).Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).Dur("latency", time.Since(start)).Msg("http request")
	}
}

// analyzeRequest is accepted as JSON body or query string. Omitted fields use
// the configured defaults; omitted dates select the default trailing window.
type analyzeRequest struct {
	Ticker          string   `json:"ticker" form:"ticker"`
	StartDate       string   `json:"start_date" form:"start_date"`
	EndDate         string   `json:"end_date" form:"end_date"`
	VolumeThreshold *float64 `json:"volume_threshold" form:"volume_threshold"`
	PriceThreshold  *float64 `json:"price_threshold" form:"price_threshold"`
	HoldingPeriod   *int     `json:"holding_period" form:"holding_period"`
}

func (r *analyzeRequest) params(a *analyzer.Analyzer) (model.Params, error) {
	p := a.WindowParams(strings.TrimSpace(r.Ticker), 0)
	if r.StartDate != "" {
		t, err := time.Parse(model.DateLayout, r.StartDate)
		if err != nil {
			return p, fmt.Errorf("%w: start_date must be YYYY-MM-DD", model.ErrInvalidParams)
		}
		p.Start = t
	}
	if r.EndDate != "" {
		t, err := time.Parse(model.DateLayout, r.EndDate)
		if err != nil {
			return p, fmt.Errorf("%w: end_date must be YYYY-MM-DD", model.ErrInvalidParams)
		}
		p.End = t
	}
	if r.VolumeThreshold != nil {
		p.VolumeThreshold = *r.VolumeThreshold
	}
	if r.PriceThreshold != nil {
		p.PriceThreshold = *r.PriceThreshold
	}
	if r.HoldingPeriod != nil {
		p.HoldingPeriod = *r.HoldingPeriod
	}
	return p, nil
}
