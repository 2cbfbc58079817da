// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape acquires new papers from arXiv incrementally,
// expanding the search window backward until a target count of unseen
// papers is reached.
package scrape

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DingyangLyu/AutoMatResearch/internal/arxiv"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// Searcher is the slice of the arXiv client the scraper needs.
type Searcher interface {
	Search(ctx context.Context, q arxiv.Query) ([]types.Paper, error)
}

// PaperStore is the slice of the store the scraper needs.
type PaperStore interface {
	SavePaper(ctx context.Context, p types.Paper) (bool, error)
	LatestPublishedDate(ctx context.Context) (time.Time, bool, error)
}

// Result summarizes one acquisition run.
type Result struct {
	// Saved counts papers newly stored this run.
	Saved int `json:"saved"`

	// Skipped counts upstream records already present in storage.
	Skipped int `json:"skipped"`

	// Rounds counts search windows tried.
	Rounds int `json:"rounds"`

	// Papers are the newly stored records, in the order saved.
	Papers []types.Paper `json:"papers,omitempty"`
}

// Scraper runs incremental acquisition.
type Scraper struct {
	searcher Searcher
	store    PaperStore
	cfg      types.ScrapeConfig
	logger   *zap.Logger
}

// New builds a Scraper. A nil logger disables logging.
func New(searcher Searcher, store PaperStore, cfg types.ScrapeConfig, logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		searcher: searcher,
		store:    store,
		cfg:      cfg,
		logger:   logger.Named("scrape"),
	}
}

// Run acquires up to target new papers using the configured keywords.
// A target of zero or less uses the configured default. Keywords may
// be nil to use the configured list.
func (s *Scraper) Run(ctx context.Context, keywords []string, target int) (Result, error) {
	if target <= 0 {
		target = s.cfg.MaxPapersPerRun
	}
	if len(keywords) == 0 {
		keywords = s.cfg.Keywords
	}

	windowDays := s.cfg.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	shiftDays := s.cfg.WindowShiftDays
	if shiftDays <= 0 {
		shiftDays = windowDays
	}
	maxRounds := s.cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = 1
	}

	// The first window runs from just before the newest stored paper
	// up to now, so a rerun covers everything published since the last
	// one. Expansion rounds then reach further back. An empty store
	// falls back to a recent window ending now.
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -windowDays)
	if latest, ok, err := s.store.LatestPublishedDate(ctx); err != nil {
		s.logger.Warn("latest stored date lookup failed", zap.Error(err))
	} else if ok && latest.Before(end) {
		start = latest.Add(-time.Second)
	}

	var res Result
	for round := 0; round < maxRounds && res.Saved < target; round++ {
		res.Rounds++
		s.logger.Info("searching window",
			zap.Int("round", res.Rounds),
			zap.Time("from", start),
			zap.Time("to", end))

		if err := s.scanWindow(ctx, keywords, start, end, target, &res); err != nil {
			return res, err
		}

		// Window exhausted below target: shift backward and retry.
		end = start.Add(-time.Second)
		start = end.AddDate(0, 0, -shiftDays)
	}

	s.logger.Info("acquisition finished",
		zap.Int("saved", res.Saved),
		zap.Int("skipped", res.Skipped),
		zap.Int("rounds", res.Rounds))
	return res, nil
}

// scanWindow pages through one window, saving unseen papers until the
// window or the target is exhausted. Page failures are logged and end
// the window without failing the run; context cancellation is fatal.
func (s *Scraper) scanWindow(ctx context.Context, keywords []string, start, end time.Time, target int, res *Result) error {
	pageSize := s.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	for offset := 0; res.Saved < target; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := s.searcher.Search(ctx, arxiv.Query{
			Keywords: keywords,
			From:     start,
			To:       end,
			Start:    offset,
			PageSize: pageSize,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("page fetch failed",
				zap.Int("offset", offset), zap.Error(err))
			return nil
		}
		if len(page) == 0 {
			return nil
		}

		for _, p := range page {
			saved, err := s.store.SavePaper(ctx, p)
			if err != nil {
				s.logger.Warn("save failed",
					zap.String("arxiv_id", p.ArxivID), zap.Error(err))
				continue
			}
			if !saved {
				res.Skipped++
				continue
			}
			res.Saved++
			res.Papers = append(res.Papers, p)
			s.logger.Info("saved paper",
				zap.String("arxiv_id", p.ArxivID),
				zap.String("title", p.Title))
			if res.Saved >= target {
				return nil
			}
		}

		// A short page means the window is exhausted.
		if len(page) < pageSize {
			return nil
		}
	}
	return nil
}
