// Package notify pushes a short summary of each run to a phone.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/llm"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/web"
)

const PushoverEndpoint = "https://api.pushover.net/1/messages.json"

// maxExcerpt is how much of the model's answer goes into the push message.
const maxExcerpt = 400

var ErrNotify = errors.New("notification failed")

type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type Pushover struct {
	Token    string
	User     string
	Endpoint string
	Client   *http.Client
}

// NewPushover returns nil when either credential is missing; the job then skips
// notifications. Each request is bounded by timeout.
func NewPushover(token, user string, timeout time.Duration) *Pushover {
	if token == "" || user == "" {
		return nil
	}
	return &Pushover{Token: token, User: user, Endpoint: PushoverEndpoint, Client: &http.Client{Timeout: timeout}}
}

func (p *Pushover) Notify(ctx context.Context, message string) error {
	form := url.Values{
		"token":   {p.Token},
		"user":    {p.User},
		"message": {message},
	}
	status, body, err := web.PostForm(ctx, p.Client, p.Endpoint, form)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotify, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: pushover status %d: %s", ErrNotify, status, body)
	}
	return nil
}

// Message is the push text for a stored record.
func Message(r types.SentimentRecord) string {
	return fmt.Sprintf("%s — Sentiment: %s\nModel: %s", r.PublishDateRaw, llm.Truncate(r.RawModelResponse, maxExcerpt), r.ModelVersion)
}
