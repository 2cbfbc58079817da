// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web serves the JSON dashboard API.
package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DingyangLyu/AutoMatResearch/internal/analyze"
	"github.com/DingyangLyu/AutoMatResearch/internal/config"
	"github.com/DingyangLyu/AutoMatResearch/internal/export"
	"github.com/DingyangLyu/AutoMatResearch/internal/schedule"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// PaperReader is the slice of the store the dashboard reads from.
type PaperReader interface {
	RecentPapers(ctx context.Context, limit int) ([]types.Paper, error)
	PapersSince(ctx context.Context, since time.Time) ([]types.Paper, error)
	SearchPapers(ctx context.Context, query string) ([]types.Paper, error)
	GetPaper(ctx context.Context, arxivID string) (types.Paper, error)
	CountPapers(ctx context.Context) (int, error)
	CountSavedSince(ctx context.Context, since time.Time) (int, error)
}

// InsightSource produces insight reports.
type InsightSource interface {
	Insights(ctx context.Context, days int) (types.Insight, error)
	Refresh(ctx context.Context, days int) (types.Insight, error)
}

// Jobs triggers and inspects scheduled work.
type Jobs interface {
	Run(ctx context.Context, name string) error
	Snapshot() []schedule.JobState
}

// Server is the dashboard HTTP server.
type Server struct {
	store    PaperReader
	insights InsightSource
	jobs     Jobs
	keywords *config.Keywords
	cfg      types.WebConfig
	logger   *zap.Logger
}

// New builds a Server. A nil logger disables logging.
func New(store PaperReader, insights InsightSource, jobs Jobs, keywords *config.Keywords, cfg types.WebConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:    store,
		insights: insights,
		jobs:     jobs,
		keywords: keywords,
		cfg:      cfg,
		logger:   logger.Named("web"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(s.cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = s.cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/papers", s.handlePapers)
		api.GET("/papers/:id", s.handlePaper)
		api.GET("/papers/:id/bibtex", s.handleBibTeX)
		api.GET("/insights", s.handleInsights)
		api.POST("/insights/refresh", s.handleInsightsRefresh)
		api.POST("/scrape", s.handleScrape)
		api.GET("/export", s.handleExport)
		api.GET("/keywords", s.handleKeywordsGet)
		api.PUT("/keywords", s.handleKeywordsPut)
	}
	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := s.store.CountPapers(ctx)
	if err != nil {
		internalError(c, err)
		return
	}
	lastWeek, err := s.store.CountSavedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		internalError(c, err)
		return
	}

	status := gin.H{
		"papers_total":     total,
		"papers_last_week": lastWeek,
		"keywords":         s.keywords.List(),
	}
	if s.jobs != nil {
		status["jobs"] = s.jobs.Snapshot()
	}
	ok(c, status)
}

func (s *Server) handlePapers(c *gin.Context) {
	ctx := c.Request.Context()

	if q := c.Query("search"); q != "" {
		papers, err := s.store.SearchPapers(ctx, q)
		if err != nil {
			internalError(c, err)
			return
		}
		okList(c, papers)
		return
	}

	if daysRaw := c.Query("days"); daysRaw != "" {
		days, err := strconv.Atoi(daysRaw)
		if err != nil || days <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		papers, err := s.store.PapersSince(ctx, time.Now().AddDate(0, 0, -days))
		if err != nil {
			internalError(c, err)
			return
		}
		okList(c, papers)
		return
	}

	limit := 50
	if limitRaw := c.Query("limit"); limitRaw != "" {
		n, err := strconv.Atoi(limitRaw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}
	papers, err := s.store.RecentPapers(ctx, limit)
	if err != nil {
		internalError(c, err)
		return
	}
	okList(c, papers)
}

func (s *Server) handlePaper(c *gin.Context) {
	p, err := s.store.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "paper not found")
			return
		}
		internalError(c, err)
		return
	}
	ok(c, p)
}

func (s *Server) handleBibTeX(c *gin.Context) {
	p, err := s.store.GetPaper(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound(c, "paper not found")
			return
		}
		internalError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/x-bibtex", []byte(export.BibTeXEntry(p)))
}

// handleInsights serves the cached insight when fresh and otherwise
// waits a bounded time for generation before answering 202.
func (s *Server) handleInsights(c *gin.Context) {
	days := 7
	if daysRaw := c.Query("days"); daysRaw != "" {
		n, err := strconv.Atoi(daysRaw)
		if err != nil || n <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	type outcome struct {
		in  types.Insight
		err error
	}
	// Generation outlives the request so a later call can serve it.
	resCh := make(chan outcome, 1)
	go func() {
		in, err := s.insights.Insights(context.Background(), days)
		resCh <- outcome{in, err}
	}()

	wait := s.cfg.InsightWait
	if wait <= 0 {
		wait = 30 * time.Second
	}

	select {
	case res := <-resCh:
		if res.err != nil {
			if errors.Is(res.err, analyze.ErrGenerating) {
				accepted(c, "insights are being generated, retry shortly")
				return
			}
			internalError(c, res.err)
			return
		}
		ok(c, res.in)
	case <-time.After(wait):
		accepted(c, "insights are being generated, retry shortly")
	}
}

func (s *Server) handleInsightsRefresh(c *gin.Context) {
	days := 7
	if daysRaw := c.Query("days"); daysRaw != "" {
		n, err := strconv.Atoi(daysRaw)
		if err != nil || n <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	go func() {
		if _, err := s.insights.Refresh(context.Background(), days); err != nil &&
			!errors.Is(err, analyze.ErrGenerating) {
			s.logger.Warn("insight refresh failed", zap.Error(err))
		}
	}()
	accepted(c, "insight regeneration started")
}

func (s *Server) handleScrape(c *gin.Context) {
	if s.jobs == nil {
		badRequest(c, "scheduler not running")
		return
	}
	go func() {
		if err := s.jobs.Run(context.Background(), schedule.JobScrape); err != nil {
			s.logger.Warn("manual scrape failed", zap.Error(err))
		}
	}()
	accepted(c, "acquisition started")
}

func (s *Server) handleExport(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	papers, err := s.store.RecentPapers(c.Request.Context(), 0)
	if err != nil {
		internalError(c, err)
		return
	}
	data, err := export.Encode(papers, format)
	if err != nil {
		internalError(c, err)
		return
	}

	contentTypes := map[export.Format]string{
		export.FormatJSON:     "application/json",
		export.FormatMarkdown: "text/markdown",
		export.FormatBibTeX:   "application/x-bibtex",
	}
	c.Data(http.StatusOK, contentTypes[format], data)
}

func (s *Server) handleKeywordsGet(c *gin.Context) {
	okList(c, s.keywords.List())
}

func (s *Server) handleKeywordsPut(c *gin.Context) {
	var body struct {
		Keywords []string `json:"keywords"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body must be {\"keywords\": [...]}")
		return
	}
	if err := s.keywords.Set(body.Keywords); err != nil {
		badRequest(c, err.Error())
		return
	}
	okList(c, s.keywords.List())
}
