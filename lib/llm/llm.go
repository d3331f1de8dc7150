// Package llm asks a language model for the day's market sentiment.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models, matching what the log has always recorded.
const (
	DefaultOpenAIModel    = "gpt-4"
	DefaultAnthropicModel = "claude-3-7-sonnet-20250219"
)

// MaxArticleChars is how much of the article goes into the prompt.
const MaxArticleChars = 3000

// ErrClassifier wraps any failure of the provider call.
var ErrClassifier = errors.New("classifier failure")

// ClassifierClient is one configured LLM provider.
type ClassifierClient interface {
	// Classify returns the model's raw, trimmed answer for the article.
	Classify(ctx context.Context, article string) (string, error)
	Provider() string
	ModelVersion() string
}

// Config selects and configures a provider.
type Config struct {
	Provider       string
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string

	// Base URL overrides, used to point the clients at test servers.
	OpenAIBaseURL    string
	AnthropicBaseURL string

	// Timeout bounds one provider request.
	Timeout time.Duration
}

// NewClassifier builds the client for cfg.Provider.
func NewClassifier(cfg Config) (ClassifierClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required when USE_MODEL=openai")
		}
		return NewOpenAIClassifier(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.Timeout), nil
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is required when USE_MODEL=anthropic")
		}
		return NewAnthropicClassifier(cfg.AnthropicKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// SentimentPrompt builds the analyst prompt around the first MaxArticleChars characters
// of the article.
func SentimentPrompt(article string) string {
	return fmt.Sprintf(`
You are a financial analyst. Based on the following article, determine whether the market sentiment for today is bullish, bearish, or mixed.
Respond with only one word: Bullish, Bearish, or Mixed at the start, followed by 2-3 key indicators that explain your reasoning.

Article:
%s
`, Truncate(article, MaxArticleChars))
}

// Truncate keeps the first n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
