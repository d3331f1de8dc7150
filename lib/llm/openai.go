package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier bounds each request by timeout; zero means no limit.
func NewOpenAIClassifier(token, model, baseURL string, timeout time.Duration) *OpenAIClassifier {
	if model == "" {
		model = DefaultOpenAIModel
	}
	config := openai.DefaultConfig(token)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClassifier{client: openai.NewClientWithConfig(config), model: model}
}

func (c *OpenAIClassifier) Provider() string     { return ProviderOpenAI }
func (c *OpenAIClassifier) ModelVersion() string { return c.model }

func (c *OpenAIClassifier) Classify(ctx context.Context, article string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: SentimentPrompt(article),
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %w", ErrClassifier, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrClassifier)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
