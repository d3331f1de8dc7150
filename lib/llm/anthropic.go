package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 512

type AnthropicClassifier struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClassifier bounds each request by timeout; zero means no limit.
func NewAnthropicClassifier(apiKey, model, baseURL string, timeout time.Duration) *AnthropicClassifier {
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}
	return &AnthropicClassifier{client: anthropic.NewClient(opts...), model: model}
}

func (c *AnthropicClassifier) Provider() string     { return ProviderAnthropic }
func (c *AnthropicClassifier) ModelVersion() string { return c.model }

func (c *AnthropicClassifier) Classify(ctx context.Context, article string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(SentimentPrompt(article))),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages: %w", ErrClassifier, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic returned no text", ErrClassifier)
	}
	return strings.TrimSpace(text.String()), nil
}
