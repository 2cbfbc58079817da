// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the typed application configuration from a YAML
// file with environment overrides. Unknown keys in the file are
// rejected so typos surface at startup instead of silently defaulting.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

const envPrefix = "AUTOMAT"

// Defaults returns the built-in configuration.
func Defaults() types.Config {
	return types.Config{
		Store: types.StoreConfig{
			Path: "data/papers.db",
		},
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "automat/0.1",
			},
			Keywords:        []string{"machine learning", "materials science"},
			ProfilePath:     "data/keywords.yaml",
			MaxPapersPerRun: 10,
			WindowDays:      7,
			WindowShiftDays: 7,
			MaxRounds:       4,
			PageSize:        50,
			ResolveDates:    true,
		},
		AI: types.AIConfig{
			BaseURL:          "https://api.deepseek.com/v1",
			Model:            "deepseek-chat",
			SummaryMaxTokens: 500,
			InsightMaxTokens: 800,
			RequestDelay:     time.Second,
			Timeout:          60 * time.Second,
		},
		Schedule: types.ScheduleConfig{
			ScrapeInterval:  24 * time.Hour,
			AnalyzeInterval: 7 * 24 * time.Hour,
			ReportsDir:      "data/reports",
		},
		Web: types.WebConfig{
			Addr:        ":8080",
			InsightWait: 30 * time.Second,
		},
		Export: types.ExportConfig{
			Dir: "data/exports",
		},
	}
}

// Load reads cfgFile (or the default search path when cfgFile is empty)
// into a Config, applying defaults and AUTOMAT_* environment overrides.
// A missing file is not an error; a malformed or unknown key is.
func Load(cfgFile string) (types.Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("automat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/automat")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Defaults()
	bindDefaults(v, defaults)

	if err := v.ReadInConfig(); err != nil {
		// An explicit file must exist and parse; the default search
		// path may simply find nothing.
		if cfgFile != "" {
			return types.Config{}, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg types.Config
	// UnmarshalExact rejects keys the Config structs do not declare.
	if err := v.UnmarshalExact(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// bindDefaults registers every default so viper can merge file and
// environment values over them.
func bindDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("scrape.timeout", d.Scrape.Timeout)
	v.SetDefault("scrape.user_agent", d.Scrape.UserAgent)
	v.SetDefault("scrape.keywords", d.Scrape.Keywords)
	v.SetDefault("scrape.profile_path", d.Scrape.ProfilePath)
	v.SetDefault("scrape.max_papers_per_run", d.Scrape.MaxPapersPerRun)
	v.SetDefault("scrape.window_days", d.Scrape.WindowDays)
	v.SetDefault("scrape.window_shift_days", d.Scrape.WindowShiftDays)
	v.SetDefault("scrape.max_rounds", d.Scrape.MaxRounds)
	v.SetDefault("scrape.page_size", d.Scrape.PageSize)
	v.SetDefault("scrape.resolve_dates", d.Scrape.ResolveDates)

	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.summary_max_tokens", d.AI.SummaryMaxTokens)
	v.SetDefault("ai.insight_max_tokens", d.AI.InsightMaxTokens)
	v.SetDefault("ai.request_delay", d.AI.RequestDelay)
	v.SetDefault("ai.timeout", d.AI.Timeout)

	v.SetDefault("schedule.scrape_interval", d.Schedule.ScrapeInterval)
	v.SetDefault("schedule.analyze_interval", d.Schedule.AnalyzeInterval)
	v.SetDefault("schedule.reports_dir", d.Schedule.ReportsDir)

	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("web.allowed_origins", d.Web.AllowedOrigins)
	v.SetDefault("web.insight_wait", d.Web.InsightWait)

	v.SetDefault("export.dir", d.Export.Dir)
}
