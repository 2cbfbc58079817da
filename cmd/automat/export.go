// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DingyangLyu/AutoMatResearch/internal/export"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored papers to JSON, Markdown, or BibTeX",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("format", "json", "export format: json, markdown, or bibtex")
	exportCmd.Flags().Int("days", 0, "only papers published in the last N days (default: all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	formatRaw, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatRaw)
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	ctx := cmd.Context()

	var papers []types.Paper
	if days > 0 {
		papers, err = a.store.PapersSince(ctx, time.Now().AddDate(0, 0, -days))
	} else {
		papers, err = a.store.RecentPapers(ctx, 0)
	}
	if err != nil {
		return err
	}
	if len(papers) == 0 {
		return fmt.Errorf("no papers to export")
	}

	path, err := export.New(a.cfg.Export).Write(papers, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "exported %d paper(s) to %s\n", len(papers), path)
	return nil
}
