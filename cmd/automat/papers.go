// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List or search stored papers",
	RunE:  runPapers,
}

func init() {
	papersCmd.Flags().String("search", "", "substring search over title, abstract, and authors")
	papersCmd.Flags().Int("days", 0, "only papers published in the last N days")
	papersCmd.Flags().Int("limit", 20, "maximum papers to list")
	papersCmd.Flags().Bool("json", false, "print papers as JSON")
	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	search, _ := cmd.Flags().GetString("search")
	days, _ := cmd.Flags().GetInt("days")
	limit, _ := cmd.Flags().GetInt("limit")
	asJSON, _ := cmd.Flags().GetBool("json")
	ctx := cmd.Context()

	var papers []types.Paper
	switch {
	case search != "":
		papers, err = a.store.SearchPapers(ctx, search)
	case days > 0:
		papers, err = a.store.PapersSince(ctx, time.Now().AddDate(0, 0, -days))
	default:
		papers, err = a.store.RecentPapers(ctx, limit)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Fprintln(os.Stdout, "no papers found")
		return nil
	}
	for _, p := range papers {
		marker := " "
		if p.Summary != "" {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %s  %s  %s\n    %s\n",
			marker, p.ArxivID, p.PublishedDate.Format("2006-01-02"),
			p.Title, strings.Join(p.Authors, ", "))
	}
	fmt.Fprintf(os.Stdout, "\n%d paper(s); * has an AI summary\n", len(papers))
	return nil
}
