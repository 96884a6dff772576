// Package config loads pipeline settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

type Config struct {
	// LLM backend
	Provider        string // gemini | huggingface
	GeminiAPIKey    string
	GeminiModel     string
	HFToken         string
	HFEndpoint      string
	HFClassifyModel string
	HFSummaryModel  string
	DefaultTopic    string // classifier fallback key
	LLMDailyLimit   int    // 0 = unlimited

	// Feeds
	FeedsConfigPath string // empty = builtin catalog
	ArticlesPerFeed int

	// Concurrency and timeouts
	Workers          int
	ClassifyTimeout  time.Duration
	FeedTimeout      time.Duration
	PageTimeout      time.Duration
	SummarizeTimeout time.Duration
	RunTimeout       time.Duration
	UserAgent        string

	// Output
	OutputDir string
	Debug     bool
}

// Default returns the settings used when no environment overrides are present.
func Default() *Config {
	return &Config{
		Provider:         ProviderGemini,
		DefaultTopic:     "technology",
		ArticlesPerFeed:  5,
		Workers:          8,
		ClassifyTimeout:  15 * time.Second,
		FeedTimeout:      10 * time.Second,
		PageTimeout:      15 * time.Second,
		SummarizeTimeout: 30 * time.Second,
		RunTimeout:       3 * time.Minute,
		OutputDir:        ".",
	}
}

func Load() (*Config, error) {
	cfg := Default()

	if p := os.Getenv("LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	cfg.HFToken = os.Getenv("HF_TOKEN")
	cfg.HFEndpoint = os.Getenv("HF_ENDPOINT")
	cfg.HFClassifyModel = os.Getenv("HF_CLASSIFY_MODEL")
	cfg.HFSummaryModel = os.Getenv("HF_SUMMARY_MODEL")
	cfg.DefaultTopic = getEnvOrDefault("DEFAULT_TOPIC", cfg.DefaultTopic)
	cfg.LLMDailyLimit = getEnvIntOrDefault("LLM_DAILY_LIMIT", cfg.LLMDailyLimit)

	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")
	cfg.ArticlesPerFeed = getEnvIntOrDefault("ARTICLES_PER_FEED", cfg.ArticlesPerFeed)
	cfg.Workers = getEnvIntOrDefault("WORKERS", cfg.Workers)

	cfg.ClassifyTimeout = getEnvDurationOrDefault("CLASSIFY_TIMEOUT", cfg.ClassifyTimeout)
	cfg.FeedTimeout = getEnvDurationOrDefault("FEED_TIMEOUT", cfg.FeedTimeout)
	cfg.PageTimeout = getEnvDurationOrDefault("PAGE_TIMEOUT", cfg.PageTimeout)
	cfg.SummarizeTimeout = getEnvDurationOrDefault("SUMMARIZE_TIMEOUT", cfg.SummarizeTimeout)
	cfg.RunTimeout = getEnvDurationOrDefault("RUN_TIMEOUT", cfg.RunTimeout)
	cfg.UserAgent = os.Getenv("USER_AGENT")

	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("15s") or plain seconds ("15").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case ProviderHuggingFace:
		if c.HFToken == "" {
			return fmt.Errorf("HF_TOKEN is required")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be '%s' or '%s'", ProviderGemini, ProviderHuggingFace)
	}
	if c.DefaultTopic == "" {
		return fmt.Errorf("DEFAULT_TOPIC must not be empty")
	}
	if c.ArticlesPerFeed <= 0 {
		return fmt.Errorf("ARTICLES_PER_FEED must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("WORKERS must be positive")
	}
	if c.LLMDailyLimit < 0 {
		return fmt.Errorf("LLM_DAILY_LIMIT must not be negative")
	}
	for name, d := range map[string]time.Duration{
		"CLASSIFY_TIMEOUT":  c.ClassifyTimeout,
		"FEED_TIMEOUT":      c.FeedTimeout,
		"PAGE_TIMEOUT":      c.PageTimeout,
		"SUMMARIZE_TIMEOUT": c.SummarizeTimeout,
		"RUN_TIMEOUT":       c.RunTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
