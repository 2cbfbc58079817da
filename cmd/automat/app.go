// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DingyangLyu/AutoMatResearch/internal/analyze"
	"github.com/DingyangLyu/AutoMatResearch/internal/arxiv"
	"github.com/DingyangLyu/AutoMatResearch/internal/config"
	"github.com/DingyangLyu/AutoMatResearch/internal/logging"
	"github.com/DingyangLyu/AutoMatResearch/internal/scrape"
	"github.com/DingyangLyu/AutoMatResearch/internal/store"
	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

// app bundles the components a command may need. Fields are populated
// lazily; close the app when done.
type app struct {
	cfg      types.Config
	logger   *zap.Logger
	store    *store.Store
	keywords *config.Keywords
}

// newApp loads configuration, opens the store, and builds the shared
// components.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = loadedSecrets["deepseek-api-key"]
	}

	logger, err := logging.New("automat", false)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	kw, err := config.NewKeywords(cfg.Scrape.ProfilePath, cfg.Scrape.Keywords)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, store: st, keywords: kw}, nil
}

func (a *app) close() {
	a.store.Close()
	a.logger.Sync()
}

// scraper builds the acquisition engine with the current keyword list.
func (a *app) scraper() *scrape.Scraper {
	cfg := a.cfg.Scrape
	cfg.Keywords = a.keywords.List()
	return scrape.New(arxiv.NewClient(cfg), a.store, cfg, a.logger)
}

// analyzer builds the LLM derivation engine. It fails without an API
// key so commands that never call the model can skip it.
func (a *app) analyzer() (*analyze.Analyzer, error) {
	chat, err := analyze.NewOpenAIChat(a.cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("building chat client (set ai.api_key, AUTOMAT_AI_API_KEY, or .secrets/deepseek-api-key): %w", err)
	}
	return analyze.New(a.store, chat, a.cfg.AI, a.logger), nil
}
