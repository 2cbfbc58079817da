// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DingyangLyu/AutoMatResearch/internal/schedule"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the acquisition and report jobs on their timers",
	Long: `Schedule runs the daemon loop: the scrape job on its daily interval and
the report job on its weekly interval, until interrupted. Use --now to
run a job once immediately instead of waiting for its timer.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().String("now", "", "run the named job once and exit (scrape or report)")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
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

	if name, _ := cmd.Flags().GetString("now"); name != "" {
		return sched.Run(cmd.Context(), name)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, js := range sched.Snapshot() {
		fmt.Fprintf(os.Stdout, "job %-8s every %s\n", js.Name, js.Interval)
	}
	sched.Start(ctx)
	return nil
}
