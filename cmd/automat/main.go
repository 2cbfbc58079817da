// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the automat CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/DingyangLyu/AutoMatResearch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the automat CLI.
var rootCmd = &cobra.Command{
	Use:   "automat",
	Short: "Monitor arXiv for new research papers and derive AI insights",
	Long: `automat watches arXiv for papers matching your keywords, stores them in a
local SQLite database, summarizes them with an LLM, and derives trend
insights across the recent literature.

Run "automat scrape" for a one-off acquisition, "automat schedule" for the
daemon loop, or "automat serve" for the JSON dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./automat.yaml or ~/.config/automat/automat.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
