// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DingyangLyu/AutoMatResearch/internal/schedule"
	"github.com/DingyangLyu/AutoMatResearch/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON dashboard and the scheduler",
	Long: `Serve starts the dashboard API and the job scheduler in one process.
The dashboard exposes stored papers, insights, and manual triggers; the
scheduler keeps acquisition and reports running in the background.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	analyzer, err := a.analyzer()
	if err != nil {
		return err
	}

	sched := schedule.New(a.logger)
	if err := sched.Register(schedule.NewScrapeJob(a.scraper(), analyzer, a.cfg.Schedule, a.logger)); err != nil {
		return err
	}
	if err := sched.Register(schedule.NewReportJob(analyzer, a.cfg.Schedule, a.logger)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sched.Start(ctx)

	srv := web.New(a.store, analyzer, sched, a.keywords, a.cfg.Web, a.logger)
	return srv.ListenAndServe(ctx)
}
