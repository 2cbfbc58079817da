// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Acquire new papers from arXiv",
	Long: `Scrape searches arXiv for papers matching the configured keywords and
stores previously-unseen ones. The search window starts just before the
newest stored paper and expands backward until the target count of new
papers is reached or the round budget runs out.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().Int("target", 0, "number of new papers to acquire (default: config max_papers_per_run)")
	scrapeCmd.Flags().StringSlice("keyword", nil, "override search keywords (repeatable)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	target, _ := cmd.Flags().GetInt("target")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")

	res, err := a.scraper().Run(cmd.Context(), keywords, target)
	if err != nil {
		return err
	}

	for _, p := range res.Papers {
		fmt.Fprintf(os.Stdout, "saved  %s  %s\n", p.ArxivID, p.Title)
	}
	fmt.Fprintf(os.Stdout, "\nsaved: %d, skipped: %d, rounds: %d\n",
		res.Saved, res.Skipped, res.Rounds)
	return nil
}
