// Package config loads pipeline configuration from environment variables
// and an optional YAML settings file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultAPIURL is the DeepSeek chat completions endpoint used when
// API_URL is not set.
const DefaultAPIURL = "https://api.deepseek.com/v1/chat/completions"

// Config holds all pipeline configuration. It is constructed once at
// process start and passed to each component explicitly.
type Config struct {
	API        APIConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Generation GenerationConfig
	Files      FileConfig
	Log        LogConfig

	// SettingsPath points at an optional YAML settings file applied on
	// top of defaults before env overrides.
	SettingsPath string
}

// APIConfig holds DeepSeek API settings.
type APIConfig struct {
	Key   string
	URL   string
	Topic string // curriculum to generate, e.g. "Algebra 1"
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL
// disables the relational problem bank.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings for the recent-problem hint
// cache. An empty URL disables the cache.
type CacheConfig struct {
	URL string
}

// GenerationConfig holds model and batch settings shared by the stages.
type GenerationConfig struct {
	Model             string
	Temperature       float64
	MaxTokens         int
	ProblemsPerPrompt int
	RecentHints       int

	// Template overrides from the settings file; empty means the
	// built-in template for the stage.
	TopicsTemplate   string
	PromptsTemplate  string
	ProblemsTemplate string
}

// FileConfig holds the paths of the stage output files.
type FileConfig struct {
	Topics   string
	Prompts  string
	Problems string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the optional settings file and the
// environment. Environment variables win over file values.
func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Key:   os.Getenv("DEEPSEEK_API_KEY"),
			URL:   DefaultAPIURL,
			Topic: os.Getenv("MATH_TOPIC"),
		},
		Database: DatabaseConfig{
			URL:      envStr("MATHPIPE_DATABASE_URL", ""),
			MaxConns: envInt("MATHPIPE_DATABASE_MAX_CONNS", 4),
			MinConns: envInt("MATHPIPE_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("MATHPIPE_CACHE_URL", ""),
		},
		Generation: GenerationConfig{
			Model:             "deepseek-chat",
			Temperature:       0.5,
			ProblemsPerPrompt: 3,
			RecentHints:       5,
		},
		Files: FileConfig{
			Topics:   "topics.json",
			Prompts:  "prompts.json",
			Problems: "problems.json",
		},
		Log: LogConfig{
			Level:  envStr("MATHPIPE_LOG_LEVEL", "info"),
			Format: envStr("MATHPIPE_LOG_FORMAT", "json"),
		},
		SettingsPath: envStr("MATHPIPE_SETTINGS", ""),
	}

	if cfg.SettingsPath != "" {
		if err := cfg.applySettingsFile(cfg.SettingsPath); err != nil {
			return nil, fmt.Errorf("loading settings file: %w", err)
		}
	}

	// Env overrides settings-file values.
	if v := os.Getenv("API_URL"); v != "" {
		cfg.API.URL = v
	}
	cfg.Generation.Model = envStr("MATHPIPE_MODEL", cfg.Generation.Model)
	cfg.Generation.Temperature = envFloat("MATHPIPE_TEMPERATURE", cfg.Generation.Temperature)
	cfg.Generation.MaxTokens = envInt("MATHPIPE_MAX_TOKENS", cfg.Generation.MaxTokens)
	cfg.Generation.ProblemsPerPrompt = envInt("MATHPIPE_PROBLEMS_PER_PROMPT", cfg.Generation.ProblemsPerPrompt)
	cfg.Generation.RecentHints = envInt("MATHPIPE_RECENT_HINTS", cfg.Generation.RecentHints)
	cfg.Files.Topics = envStr("MATHPIPE_TOPICS_FILE", cfg.Files.Topics)
	cfg.Files.Prompts = envStr("MATHPIPE_PROMPTS_FILE", cfg.Files.Prompts)
	cfg.Files.Problems = envStr("MATHPIPE_PROBLEMS_FILE", cfg.Files.Problems)

	return cfg, nil
}

// Validate checks that required configuration is present. The topic is
// only required by the generation stages; the query CLI passes false.
func (c *Config) Validate(needTopic bool) error {
	if c.API.Key == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required")
	}
	if needTopic && c.API.Topic == "" {
		return fmt.Errorf("MATH_TOPIC is required")
	}
	if c.Generation.ProblemsPerPrompt < 1 {
		return fmt.Errorf("problems per prompt must be at least 1, got %d", c.Generation.ProblemsPerPrompt)
	}
	return nil
}

// HasDatabase returns true when a relational problem bank is configured.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasCache returns true when the hint cache is configured.
func (c *Config) HasCache() bool {
	return c.Cache.URL != ""
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}
