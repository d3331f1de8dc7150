package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abcdef", 3))
	assert.Equal(t, "ab", Truncate("ab", 3))
	assert.Equal(t, "", Truncate("ab", 0))
	assert.Equal(t, "héé", Truncate("héééé", 3), "counts runes, not bytes")
}

func TestSentimentPromptTruncatesArticle(t *testing.T) {
	article := strings.Repeat("a", MaxArticleChars) + "TAIL"
	prompt := SentimentPrompt(article)

	assert.Contains(t, prompt, "Bullish, Bearish, or Mixed")
	assert.Contains(t, prompt, strings.Repeat("a", MaxArticleChars))
	assert.NotContains(t, prompt, "TAIL")
}

func TestNewClassifierSelection(t *testing.T) {
	c, err := NewClassifier(Config{Provider: "openai", OpenAIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())
	assert.Equal(t, DefaultOpenAIModel, c.ModelVersion())

	c, err = NewClassifier(Config{Provider: "Anthropic", AnthropicKey: "k", AnthropicModel: "claude-x"})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, c.Provider())
	assert.Equal(t, "claude-x", c.ModelVersion())

	_, err = NewClassifier(Config{Provider: "openai"})
	assert.Error(t, err)
	_, err = NewClassifier(Config{Provider: "anthropic", OpenAIKey: "k"})
	assert.Error(t, err)
	_, err = NewClassifier(Config{Provider: "deepseek", OpenAIKey: "k"})
	assert.Error(t, err)
}

func TestOpenAIClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Stocks rallied")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  Bullish. Earnings beat.\n"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClassifier("test-key", "", srv.URL+"/v1", time.Second)
	raw, err := c.Classify(context.Background(), "Stocks rallied")
	require.NoError(t, err)
	assert.Equal(t, "Bullish. Earnings beat.", raw)
}

func TestOpenAIClassifyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	_, err := NewOpenAIClassifier("bad", "", srv.URL+"/v1", time.Second).Classify(context.Background(), "x")
	require.ErrorIs(t, err, ErrClassifier)
}

func TestAnthropicClassify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultAnthropicModel, req["model"])
		assert.EqualValues(t, 512, req["max_tokens"])
		assert.EqualValues(t, 0, req["temperature"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-7-sonnet-20250219",
			"content":[{"type":"text","text":"Bearish\n- yields up"}],
			"stop_reason":"end_turn","usage":{"input_tokens":10,"output_tokens":5}}`)
	}))
	defer srv.Close()

	c := NewAnthropicClassifier("test-key", "", srv.URL+"/", time.Second)
	raw, err := c.Classify(context.Background(), "Yields jumped")
	require.NoError(t, err)
	assert.Equal(t, "Bearish\n- yields up", raw)
}

func TestAnthropicClassifyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"nope"}}`)
	}))
	defer srv.Close()

	_, err := NewAnthropicClassifier("test-key", "", srv.URL+"/", time.Second).Classify(context.Background(), "x")
	require.ErrorIs(t, err, ErrClassifier)
}

func stalledServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	return srv
}

func TestClassifyStalledProviderTimesOut(t *testing.T) {
	srv := stalledServer(t)
	clients := map[string]ClassifierClient{
		ProviderOpenAI:    NewOpenAIClassifier("k", "", srv.URL+"/v1", 50*time.Millisecond),
		ProviderAnthropic: NewAnthropicClassifier("k", "", srv.URL+"/", 50*time.Millisecond),
	}
	for name, c := range clients {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			_, err := c.Classify(context.Background(), "x")
			require.ErrorIs(t, err, ErrClassifier)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}
