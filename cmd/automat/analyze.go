// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize stored papers and print trend insights",
	Long: `Analyze summarizes every stored paper that does not yet have a summary,
then prints the trend insight for the requested window. Insights are
cached by content hash, so an unchanged paper set costs no API call.`,
	RunE: runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare <arxiv-id> <arxiv-id> [arxiv-id...]",
	Short: "Compare two or more stored papers",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCompare,
}

func init() {
	analyzeCmd.Flags().Int("days", 7, "insight window in days")
	analyzeCmd.Flags().Bool("refresh", false, "regenerate the insight even if cached")
	analyzeCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	analyzer, err := a.analyzer()
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	refresh, _ := cmd.Flags().GetBool("refresh")
	ctx := cmd.Context()

	papers, err := a.store.RecentPapers(ctx, 0)
	if err != nil {
		return err
	}
	batch, err := analyzer.SummarizeBatch(ctx, papers)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "summarized: %d, skipped: %d, failed: %d\n\n",
		batch.Summarized, batch.Skipped, batch.Failed)

	insights := analyzer.Insights
	if refresh {
		insights = analyzer.Refresh
	}
	in, err := insights(ctx, days)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Insights (last %d days)\n\n%s\n", days, in.Text)
	if len(in.TrendingTopics) > 0 {
		fmt.Fprintf(os.Stdout, "\nTrending topics: %s\n",
			strings.Join(in.TrendingTopics, ", "))
	}
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	analyzer, err := a.analyzer()
	if err != nil {
		return err
	}

	text, err := analyzer.Compare(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, text)
	return nil
}
