package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "automat/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the SQLite database file (e.g. "data/papers.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ScrapeConfig holds settings for incremental acquisition.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Keywords are the default search terms, combined with AND.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// ProfilePath is the YAML file holding runtime keyword edits.
	ProfilePath string `json:"profile_path" yaml:"profile_path" mapstructure:"profile_path"`

	// MaxPapersPerRun is the target number of new papers per run (default 10).
	MaxPapersPerRun int `json:"max_papers_per_run" yaml:"max_papers_per_run" mapstructure:"max_papers_per_run"`

	// WindowDays is the initial search window length in days (default 7).
	WindowDays int `json:"window_days" yaml:"window_days" mapstructure:"window_days"`

	// WindowShiftDays is how far the window shifts back when a round
	// produces no new papers (default 7).
	WindowShiftDays int `json:"window_shift_days" yaml:"window_shift_days" mapstructure:"window_shift_days"`

	// MaxRounds bounds the number of window expansions (default 4).
	MaxRounds int `json:"max_rounds" yaml:"max_rounds" mapstructure:"max_rounds"`

	// PageSize is the arXiv API page size (default 50, the API caps
	// usable pages well below its nominal maximum).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// ResolveDates controls whether the abs page is scraped for a more
	// precise submission date (default true).
	ResolveDates bool `json:"resolve_dates" yaml:"resolve_dates" mapstructure:"resolve_dates"`
}

// AIConfig holds settings for the chat-completion API used by analysis.
type AIConfig struct {
	// BaseURL is the OpenAI-compatible endpoint (default DeepSeek).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates requests. Usually supplied via the secrets
	// directory or AUTOMAT_AI_API_KEY rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the chat model identifier (default "deepseek-chat").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// SummaryMaxTokens caps per-paper summary responses (default 500).
	SummaryMaxTokens int `json:"summary_max_tokens" yaml:"summary_max_tokens" mapstructure:"summary_max_tokens"`

	// InsightMaxTokens caps insight report responses (default 800).
	InsightMaxTokens int `json:"insight_max_tokens" yaml:"insight_max_tokens" mapstructure:"insight_max_tokens"`

	// RequestDelay is the pause between consecutive API calls in a
	// batch (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// Timeout is the per-request timeout (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ScheduleConfig holds settings for the timer scheduler.
type ScheduleConfig struct {
	// ScrapeInterval is the period of the acquisition job (default 24h).
	ScrapeInterval time.Duration `json:"scrape_interval" yaml:"scrape_interval" mapstructure:"scrape_interval"`

	// AnalyzeInterval is the period of the analysis job (default 168h).
	AnalyzeInterval time.Duration `json:"analyze_interval" yaml:"analyze_interval" mapstructure:"analyze_interval"`

	// ReportsDir is where daily insight files and weekly reports land.
	ReportsDir string `json:"reports_dir" yaml:"reports_dir" mapstructure:"reports_dir"`
}

// WebConfig holds settings for the JSON dashboard.
type WebConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// InsightWait bounds how long a request waits for a fresh insight
	// before answering "still generating" (default 30s).
	InsightWait time.Duration `json:"insight_wait" yaml:"insight_wait" mapstructure:"insight_wait"`
}

// ExportConfig holds settings for file exports.
type ExportConfig struct {
	// Dir is the directory export files are written to.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups all component configurations. It is constructed once at
// startup and passed explicitly; no component reads global state.
type Config struct {
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule" mapstructure:"schedule"`
	Web      WebConfig      `json:"web" yaml:"web" mapstructure:"web"`
	Export   ExportConfig   `json:"export" yaml:"export" mapstructure:"export"`
}

// Validate reports unrecoverable configuration errors. Only startup
// treats these as fatal.
func (c Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	if len(c.Scrape.Keywords) == 0 {
		return fmt.Errorf("scrape.keywords must list at least one term")
	}
	for _, kw := range c.Scrape.Keywords {
		if kw == "" {
			return fmt.Errorf("scrape.keywords must not contain empty terms")
		}
		if len(kw) > 100 {
			return fmt.Errorf("scrape keyword %q exceeds 100 characters", kw)
		}
	}
	if c.Scrape.MaxRounds < 1 {
		return fmt.Errorf("scrape.max_rounds must be at least 1")
	}
	if c.Web.Addr == "" {
		return fmt.Errorf("web.addr must not be empty")
	}
	return nil
}
