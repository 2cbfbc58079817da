// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schedule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DingyangLyu/AutoMatResearch/internal/analyze"
	"github.com/DingyangLyu/AutoMatResearch/internal/scrape"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// Job names used by the CLI and the web dashboard.
const (
	JobScrape = "scrape"
	JobReport = "report"
)

// Acquirer runs one acquisition pass.
type Acquirer interface {
	Run(ctx context.Context, keywords []string, target int) (scrape.Result, error)
}

// Deriver produces summaries and insight reports.
type Deriver interface {
	SummarizeBatch(ctx context.Context, papers []types.Paper) (analyze.BatchResult, error)
	Insights(ctx context.Context, days int) (types.Insight, error)
}

// NewScrapeJob returns the daily acquisition job: scrape new papers,
// summarize them, refresh the 1, 7, and 30 day insight caches, and
// drop a short insight file in the reports directory.
func NewScrapeJob(acquirer Acquirer, deriver Deriver, cfg types.ScheduleConfig, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name:        JobScrape,
		Description: "acquire, summarize, and refresh insights",
		Interval:    cfg.ScrapeInterval,
		Fn: func(ctx context.Context) error {
			res, err := acquirer.Run(ctx, nil, 0)
			if err != nil {
				return fmt.Errorf("acquisition: %w", err)
			}
			logger.Info("daily acquisition done",
				zap.Int("saved", res.Saved), zap.Int("skipped", res.Skipped))

			if len(res.Papers) > 0 {
				batch, err := deriver.SummarizeBatch(ctx, res.Papers)
				if err != nil {
					return fmt.Errorf("summarization: %w", err)
				}
				logger.Info("summaries updated",
					zap.Int("summarized", batch.Summarized),
					zap.Int("failed", batch.Failed))
			}

			// Refresh every window the dashboard serves; the 1-day
			// insight feeds the daily report.
			var (
				daily     types.Insight
				haveDaily bool
			)
			for _, days := range []int{1, 7, 30} {
				in, err := deriver.Insights(ctx, days)
				if err != nil {
					// A concurrent manual refresh is fine to skip.
					if err == analyze.ErrGenerating {
						continue
					}
					return fmt.Errorf("refreshing %dd insight: %w", days, err)
				}
				if days == 1 {
					daily, haveDaily = in, true
				}
			}
			if !haveDaily {
				return nil
			}
			return writeReport(cfg.ReportsDir, "daily", daily, res)
		},
	}
}

// NewReportJob returns the weekly analysis job: regenerate the weekly
// insight and write a report file.
func NewReportJob(deriver Deriver, cfg types.ScheduleConfig, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name:        JobReport,
		Description: "generate the weekly trend report",
		Interval:    cfg.AnalyzeInterval,
		Fn: func(ctx context.Context) error {
			in, err := deriver.Insights(ctx, 7)
			if err != nil {
				if err == analyze.ErrGenerating {
					return nil
				}
				return fmt.Errorf("weekly insight: %w", err)
			}
			logger.Info("weekly report generated", zap.String("key", in.Key))
			return writeReport(cfg.ReportsDir, "weekly", in, scrape.Result{})
		},
	}
}

// writeReport renders an insight as Markdown into the reports
// directory, named by kind and date.
func writeReport(dir, kind string, in types.Insight, res scrape.Result) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s report, %s\n\n",
		strings.ToUpper(kind[:1])+kind[1:], time.Now().UTC().Format("2006-01-02"))
	if res.Saved > 0 || res.Skipped > 0 {
		fmt.Fprintf(&b, "New papers: %d (skipped %d duplicates, %d search rounds)\n\n",
			res.Saved, res.Skipped, res.Rounds)
	}
	b.WriteString(in.Text)
	b.WriteString("\n")
	if len(in.TrendingTopics) > 0 {
		fmt.Fprintf(&b, "\nTrending topics: %s\n", strings.Join(in.TrendingTopics, ", "))
	}

	name := fmt.Sprintf("%s_%s.md", kind, time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}
