package config

import (
	"time"

	"golang-market-digest/pkg/config"
)

// Feeds holds feed ingestion configuration.
type Feeds struct {
	Path              string        `mapstructure:"path"`
	MaxEntriesPerFeed int           `mapstructure:"max_entries_per_feed"`
	MaxArticles       int           `mapstructure:"max_articles"`
	FetchFullText     bool          `mapstructure:"fetch_full_text"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
	MaxExtractionTokens int    `mapstructure:"max_extraction_tokens"`
	MaxReportTokens     int    `mapstructure:"max_report_tokens"`
}

// Output holds artifact output configuration.
type Output struct {
	Dir                        string `mapstructure:"dir"`
	PersistSummaryBeforeReport bool   `mapstructure:"persist_summary_before_report"`
}

// Scheduler holds the cron configuration for serve mode.
type Scheduler struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the digest service.
type Config struct {
	App       config.App    `mapstructure:"app"`
	Logger    config.Logger `mapstructure:"logger"`
	API       config.API    `mapstructure:"api"`
	Feeds     Feeds         `mapstructure:"feeds"`
	Gemini    Gemini        `mapstructure:"gemini"`
	Output    Output        `mapstructure:"output"`
	Scheduler Scheduler     `mapstructure:"scheduler"`
	Telegram  Telegram      `mapstructure:"telegram"`
}

// Load loads the digest configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Feeds.MaxEntriesPerFeed <= 0 {
		c.Feeds.MaxEntriesPerFeed = 50
	}
	if c.Feeds.MaxArticles <= 0 {
		c.Feeds.MaxArticles = 200
	}
	if c.Gemini.MaxExtractionTokens <= 0 {
		c.Gemini.MaxExtractionTokens = 1500
	}
	if c.Gemini.MaxReportTokens <= 0 {
		c.Gemini.MaxReportTokens = 2500
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 10
	}
	if c.Gemini.MaxTokenPerMinute <= 0 {
		c.Gemini.MaxTokenPerMinute = 250000
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "0 7 * * *"
	}
}
