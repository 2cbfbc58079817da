// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and configuration status",
	RunE:  runStatus,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the automat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "automat %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, versionCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	total, err := a.store.CountPapers(ctx)
	if err != nil {
		return err
	}
	lastWeek, err := a.store.CountSavedSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "database:       %s\n", a.cfg.Store.Path)
	fmt.Fprintf(os.Stdout, "papers:         %d (%d saved in the last week)\n", total, lastWeek)
	fmt.Fprintf(os.Stdout, "keywords:       %s\n", strings.Join(a.keywords.List(), ", "))
	if latest, ok, err := a.store.LatestPublishedDate(ctx); err == nil && ok {
		fmt.Fprintf(os.Stdout, "newest paper:   %s\n", latest.Format("2006-01-02"))
	}
	fmt.Fprintf(os.Stdout, "model:          %s (%s)\n", a.cfg.AI.Model, a.cfg.AI.BaseURL)
	fmt.Fprintf(os.Stdout, "scrape every:   %s\n", a.cfg.Schedule.ScrapeInterval)
	fmt.Fprintf(os.Stdout, "report every:   %s\n", a.cfg.Schedule.AnalyzeInterval)
	return nil
}
