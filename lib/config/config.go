// Package config reads the job settings from .env and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/gate"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/llm"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
)

const DefaultArticleURL = "https://www.schwab.com/learn/story/stock-market-update-open"

// ConfigError is a setting that is missing or unusable. It is fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

type Config struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string

	LogLevel      logger.LogLevel
	LogPath       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int

	PushoverUserKey  string
	PushoverAPIToken string

	ArticleURL   string
	CSVPath      string
	DatabaseURL  string
	RetryDelay   time.Duration
	HTTPTimeout  time.Duration
	LLMTimeout   time.Duration
	Schedule     string
	DebugDumpDir string
}

// Load reads .env files (missing ones are fine) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, &ConfigError{Field: f, Reason: err.Error()}
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from a getenv function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Provider:         strings.ToLower(get("USE_MODEL", llm.ProviderOpenAI)),
		OpenAIKey:        get("OPENAI_API_KEY", ""),
		OpenAIModel:      get("OPENAI_MODEL", llm.DefaultOpenAIModel),
		AnthropicKey:     get("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   get("ANTHROPIC_MODEL", llm.DefaultAnthropicModel),
		LogPath:          get("LOG_PATH", "market_sentiment_debug.log"),
		PushoverUserKey:  get("PUSHOVER_USER_KEY", ""),
		PushoverAPIToken: get("PUSHOVER_API_TOKEN", ""),
		ArticleURL:       get("ARTICLE_URL", DefaultArticleURL),
		CSVPath:          get("SENTIMENT_CSV", "market_sentiment.csv"),
		DatabaseURL:      get("DATABASE_URL", ""),
		Schedule:         get("SCHEDULE", ""),
		DebugDumpDir:     get("DEBUG_DUMP_DIR", ""),
	}

	level, ok := logger.ParseLogLevel(get("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, &ConfigError{Field: "LOG_LEVEL", Reason: fmt.Sprintf("%q is not one of DEBUG, INFO, WARNING", getenv("LOG_LEVEL"))}
	}
	cfg.LogLevel = level

	var err error
	if cfg.LogMaxSize, err = intSetting(get, "LOG_MAX_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.LogMaxBackups, err = intSetting(get, "LOG_MAX_BACKUPS", 5); err != nil {
		return nil, err
	}
	if cfg.LogMaxAge, err = intSetting(get, "LOG_MAX_AGE", 30); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = durationSetting(get, "RETRY_DELAY", gate.DefaultRetryDelay); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationSetting(get, "HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = durationSetting(get, "LLM_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Provider {
	case llm.ProviderOpenAI:
		if c.OpenAIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY", Reason: "required when USE_MODEL=openai"}
		}
	case llm.ProviderAnthropic:
		if c.AnthropicKey == "" {
			return &ConfigError{Field: "ANTHROPIC_API_KEY", Reason: "required when USE_MODEL=anthropic"}
		}
	default:
		return &ConfigError{Field: "USE_MODEL", Reason: fmt.Sprintf("%q is not openai or anthropic", c.Provider)}
	}

	if c.RetryDelay < gate.MinRetryDelay || c.RetryDelay > gate.MaxRetryDelay {
		return &ConfigError{Field: "RETRY_DELAY", Reason: fmt.Sprintf("%s is outside %s..%s", c.RetryDelay, gate.MinRetryDelay, gate.MaxRetryDelay)}
	}
	if c.HTTPTimeout <= 0 {
		return &ConfigError{Field: "HTTP_TIMEOUT", Reason: "must be positive"}
	}
	if c.LLMTimeout <= 0 {
		return &ConfigError{Field: "LLM_TIMEOUT", Reason: "must be positive"}
	}
	if c.CSVPath == "" {
		return &ConfigError{Field: "SENTIMENT_CSV", Reason: "must not be empty"}
	}
	if c.Schedule != "" {
		if _, err := ScheduleParser.Parse(c.Schedule); err != nil {
			return &ConfigError{Field: "SCHEDULE", Reason: err.Error()}
		}
	}
	return nil
}

// ScheduleParser reads SCHEDULE: a cron spec with a leading seconds field, or a
// descriptor such as @daily.
var ScheduleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NotificationsEnabled reports whether both Pushover credentials are set.
func (c *Config) NotificationsEnabled() bool {
	return c.PushoverUserKey != "" && c.PushoverAPIToken != ""
}

// LLM returns the provider settings.
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:       c.Provider,
		OpenAIKey:      c.OpenAIKey,
		OpenAIModel:    c.OpenAIModel,
		AnthropicKey:   c.AnthropicKey,
		AnthropicModel: c.AnthropicModel,
		Timeout:        c.LLMTimeout,
	}
}

func intSetting(get func(string, string) string, key string, def int) (int, error) {
	v := get(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &ConfigError{Field: key, Reason: fmt.Sprintf("%q is not a non-negative integer", v)}
	}
	return n, nil
}

// durationSetting accepts a Go duration ("2m30s") or a plain number of seconds.
func durationSetting(get func(string, string) string, key string, def time.Duration) (time.Duration, error) {
	v := get(key, "")
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ConfigError{Field: key, Reason: fmt.Sprintf("%q is not a duration", v)}
	}
	return d, nil
}
