// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze derives summaries and trend insights from stored
// papers with an LLM, caching insight reports by content hash.
package analyze

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DingyangLyu/AutoMatResearch/internal/inflight"
	"github.com/DingyangLyu/AutoMatResearch/internal/scrape"
	"github.com/DingyangLyu/AutoMatResearch/internal/store"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// ErrGenerating reports that an insight is being generated by another
// caller and nothing is cached yet.
var ErrGenerating = errors.New("insight generation in progress")

// promptPaperLimit caps how many papers are quoted in an insight prompt.
const promptPaperLimit = 10

// Store is the slice of the paper store the analyzer needs.
type Store interface {
	GetPaper(ctx context.Context, arxivID string) (types.Paper, error)
	PapersSince(ctx context.Context, since time.Time) ([]types.Paper, error)
	UpdateSummary(ctx context.Context, arxivID, summary string) error
	GetInsight(ctx context.Context, key string) (types.Insight, error)
	PutInsight(ctx context.Context, in types.Insight) error
}

// BatchResult counts the outcomes of a summarization batch.
type BatchResult struct {
	Summarized int `json:"summarized"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Analyzer runs LLM derivation over the store.
type Analyzer struct {
	store    Store
	chat     ChatClient
	inflight *inflight.Group
	cfg      types.AIConfig
	logger   *zap.Logger
}

// New builds an Analyzer. A nil logger disables logging.
func New(st Store, chat ChatClient, cfg types.AIConfig, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		store:    st,
		chat:     chat,
		inflight: inflight.New(),
		cfg:      cfg,
		logger:   logger.Named("analyze"),
	}
}

// Summarize produces a short summary of one paper.
func (a *Analyzer) Summarize(ctx context.Context, p types.Paper) (string, error) {
	user := fmt.Sprintf("Title: %s\n\nAuthors: %s\n\nAbstract: %s",
		p.Title, strings.Join(p.Authors, ", "), p.Abstract)

	text, err := a.chat.Complete(ctx, summarySystemPrompt, user, a.cfg.SummaryMaxTokens)
	if err != nil {
		return "", fmt.Errorf("summarizing %s: %w", p.ArxivID, err)
	}
	return strings.TrimSpace(text), nil
}

// SummarizeBatch summarizes every paper that does not yet have a
// summary and stores the results. Failures are logged and counted, not
// fatal; the configured delay is applied between API calls.
func (a *Analyzer) SummarizeBatch(ctx context.Context, papers []types.Paper) (BatchResult, error) {
	var res BatchResult
	for i, p := range papers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if p.Summary != "" {
			res.Skipped++
			continue
		}

		if i > 0 && a.cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(a.cfg.RequestDelay):
			}
		}

		summary, err := a.Summarize(ctx, p)
		if err != nil {
			a.logger.Warn("summary failed",
				zap.String("arxiv_id", p.ArxivID), zap.Error(err))
			res.Failed++
			continue
		}
		if err := a.store.UpdateSummary(ctx, p.ArxivID, summary); err != nil {
			a.logger.Warn("summary store failed",
				zap.String("arxiv_id", p.ArxivID), zap.Error(err))
			res.Failed++
			continue
		}
		res.Summarized++
	}
	return res, nil
}

// Insights returns the trend report for the last days of papers.
// An unchanged paper set returns the cached report byte for byte.
// When another caller is already generating the same report, the stale
// cache entry is served if one exists, otherwise ErrGenerating.
func (a *Analyzer) Insights(ctx context.Context, days int) (types.Insight, error) {
	if days <= 0 {
		days = 7
	}
	key := types.InsightKey(days)

	since := time.Now().UTC().AddDate(0, 0, -days)
	papers, err := a.store.PapersSince(ctx, since)
	if err != nil {
		return types.Insight{}, fmt.Errorf("loading recent papers: %w", err)
	}
	if len(papers) == 0 {
		return types.Insight{
			Key:         key,
			Text:        fmt.Sprintf("No papers stored in the last %d days.", days),
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	hash := store.ContentHash(papers)

	cached, cacheErr := a.store.GetInsight(ctx, key)
	if cacheErr == nil && cached.ContentHash == hash {
		return cached, nil
	}
	if cacheErr != nil && cacheErr != sql.ErrNoRows {
		return types.Insight{}, fmt.Errorf("loading cached insight: %w", cacheErr)
	}

	if !a.inflight.TryAcquire(key) {
		if cacheErr == nil {
			// Serve the stale entry rather than generating twice.
			return cached, nil
		}
		return types.Insight{}, ErrGenerating
	}
	defer a.inflight.Release(key)

	in, err := a.generateInsight(ctx, key, hash, days, papers)
	if err != nil {
		return types.Insight{}, err
	}
	if err := a.store.PutInsight(ctx, in); err != nil {
		return types.Insight{}, fmt.Errorf("caching insight: %w", err)
	}
	return in, nil
}

func (a *Analyzer) generateInsight(ctx context.Context, key, hash string, days int, papers []types.Paper) (types.Insight, error) {
	texts := make([]string, 0, len(papers))
	for _, p := range papers {
		texts = append(texts, p.Title+" "+p.Abstract)
	}
	topics := scrape.TrendingTopics(texts, 10)

	var b strings.Builder
	fmt.Fprintf(&b, "Research papers from the last %d days (%d total", days, len(papers))
	if len(papers) > promptPaperLimit {
		fmt.Fprintf(&b, ", showing %d most recent", promptPaperLimit)
	}
	b.WriteString("):\n\n")
	for i, p := range papers {
		if i >= promptPaperLimit {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   Authors: %s\n   Abstract: %s\n\n",
			i+1, p.Title, strings.Join(p.Authors, ", "), p.Abstract)
	}
	if len(topics) > 0 {
		fmt.Fprintf(&b, "Frequent terms: %s\n", strings.Join(topics, ", "))
	}

	a.logger.Info("generating insight",
		zap.String("key", key), zap.Int("papers", len(papers)))

	text, err := a.chat.Complete(ctx, insightSystemPrompt, b.String(), a.cfg.InsightMaxTokens)
	if err != nil {
		return types.Insight{}, fmt.Errorf("generating insight: %w", err)
	}

	// Truncated to the stored precision so the generating call returns
	// the same value a later cached read does.
	now := time.Now().UTC().Truncate(time.Second)
	return types.Insight{
		Key:            key,
		ContentHash:    hash,
		Text:           strings.TrimSpace(text),
		TrendingTopics: topics,
		GeneratedAt:    now,
		UpdatedAt:      now,
	}, nil
}

// Refresh regenerates the insight for days unconditionally, ignoring
// any cache entry, and overwrites the cache. A concurrent generation
// for the same key returns ErrGenerating.
func (a *Analyzer) Refresh(ctx context.Context, days int) (types.Insight, error) {
	if days <= 0 {
		days = 7
	}
	key := types.InsightKey(days)

	since := time.Now().UTC().AddDate(0, 0, -days)
	papers, err := a.store.PapersSince(ctx, since)
	if err != nil {
		return types.Insight{}, fmt.Errorf("loading recent papers: %w", err)
	}
	if len(papers) == 0 {
		return types.Insight{
			Key:         key,
			Text:        fmt.Sprintf("No papers stored in the last %d days.", days),
			GeneratedAt: time.Now().UTC(),
		}, nil
	}

	if !a.inflight.TryAcquire(key) {
		return types.Insight{}, ErrGenerating
	}
	defer a.inflight.Release(key)

	in, err := a.generateInsight(ctx, key, store.ContentHash(papers), days, papers)
	if err != nil {
		return types.Insight{}, err
	}
	if err := a.store.PutInsight(ctx, in); err != nil {
		return types.Insight{}, fmt.Errorf("caching insight: %w", err)
	}
	return in, nil
}

// Compare produces a structured comparison of two or more stored
// papers identified by their arXiv ids.
func (a *Analyzer) Compare(ctx context.Context, arxivIDs []string) (string, error) {
	if len(arxivIDs) < 2 {
		return "", fmt.Errorf("comparison needs at least two papers")
	}

	var b strings.Builder
	for i, id := range arxivIDs {
		p, err := a.store.GetPaper(ctx, id)
		if err != nil {
			return "", fmt.Errorf("loading paper %s: %w", id, err)
		}
		fmt.Fprintf(&b, "Paper %d (%s): %s\nAuthors: %s\nAbstract: %s\n\n",
			i+1, p.ArxivID, p.Title, strings.Join(p.Authors, ", "), p.Abstract)
	}

	text, err := a.chat.Complete(ctx, compareSystemPrompt, b.String(), a.cfg.InsightMaxTokens)
	if err != nil {
		return "", fmt.Errorf("comparing papers: %w", err)
	}
	return strings.TrimSpace(text), nil
}
