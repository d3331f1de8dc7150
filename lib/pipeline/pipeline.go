// Package pipeline runs one pass of the sentiment job:
// fetch → extract → staleness gate → classify → normalize → store → notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/gate"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/llm"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/notify"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/readability"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/sentiment"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/store"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/web"
)

// ErrFetch is a transport failure of the article source. It is not retried.
var ErrFetch = errors.New("fetch failed")

// Source returns the raw markup of the article page.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Fetch(ctx context.Context) (string, error) { return f(ctx) }

type Status string

const (
	Written Status = "written"
	Aborted Status = "aborted"
)

// Outcome describes a finished run. Record is only set when Status is Written.
type Outcome struct {
	Status Status
	Record types.SentimentRecord
	Gate   gate.Result
}

type Runner struct {
	Source     Source
	Classifier llm.ClassifierClient
	Store      store.Store
	// Notifier may be nil, which disables notifications.
	Notifier notify.Notifier
	Gate     *gate.Gate
	Logger   *logger.Logger
	// DumpDir, when set, receives article_html.log and article.log on every fetch.
	DumpDir string
}

// Run performs one invocation. A clean abort on a stale article is not an error.
// Returned errors are fetch failures, extraction failures that outlived the retry,
// store failures or cancellation.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	log := r.Logger
	if log == nil {
		log = logger.Discard()
	}

	res, err := r.Gate.Run(ctx, r.fetchSnapshot)
	if err != nil {
		return Outcome{Gate: res}, err
	}
	if !res.Proceed() {
		// res.Err is nil for a stale article and an extraction error otherwise.
		return Outcome{Status: Aborted, Gate: res}, res.Err
	}

	snapshot := res.Snapshot
	log.Info("Fetched article published on: %s", snapshot.PublishDateRaw)

	raw, err := r.Classifier.Classify(ctx, snapshot.BodyText)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{Gate: res}, ctxErr
		}
		log.Warning("Sentiment classification failed, recording Undetermined: %v", err)
		raw = ""
	}

	record := types.SentimentRecord{
		DateKey:          res.Today,
		PublishDateRaw:   snapshot.PublishDateRaw,
		Label:            sentiment.Normalize(raw),
		ModelProvider:    r.Classifier.Provider(),
		ModelVersion:     r.Classifier.ModelVersion(),
		ContentHash:      snapshot.ContentHash,
		RawModelResponse: raw,
	}

	if err := r.Store.Upsert(ctx, record); err != nil {
		return Outcome{Gate: res}, err
	}
	log.Info("Sentiment for %s: %s", record.DateKey, record.Label)
	log.Debug("Article hash: %s", record.ContentHash)
	log.Debug("Raw response: %s", record.RawModelResponse)

	r.notify(ctx, log, record)

	return Outcome{Status: Written, Record: record, Gate: res}, nil
}

func (r *Runner) fetchSnapshot(ctx context.Context) (types.ArticleSnapshot, error) {
	log := r.Logger
	if log == nil {
		log = logger.Discard()
	}

	markup, err := r.Source.Fetch(ctx)
	if err != nil {
		return types.ArticleSnapshot{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	snapshot, err := readability.Extract(markup)
	r.dump(log, snapshot)
	if err != nil {
		return snapshot, err
	}
	log.Info("Fetched article text successfully (%d characters)", len(snapshot.BodyText))
	log.Debug("Extracted full date text: %s, parsed date key: %s", snapshot.PublishDateRaw, snapshot.PublishDateKey)
	return snapshot, nil
}

func (r *Runner) dump(log *logger.Logger, snapshot types.ArticleSnapshot) {
	if r.DumpDir == "" {
		return
	}
	compact, err := web.CompressHtml(snapshot.RawMarkup)
	if err != nil {
		log.Warning("Could not compact markup for dump: %v", err)
		compact = snapshot.RawMarkup
	}
	files := map[string]string{
		"article_html.log": compact,
		"article.log":      snapshot.BodyText,
	}
	for name, content := range files {
		path := filepath.Join(r.DumpDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			log.Warning("Could not write debug dump %s: %v", path, err)
		}
	}
}

func (r *Runner) notify(ctx context.Context, log *logger.Logger, record types.SentimentRecord) {
	if r.Notifier == nil {
		log.Warning("Pushover credentials not found. Skipping notification.")
		return
	}
	log.Info("Logging complete. Sending push notification...")
	if err := r.Notifier.Notify(ctx, notify.Message(record)); err != nil {
		log.Warning("Pushover notification failed: %v", err)
		return
	}
	log.Info("Push notification sent successfully.")
}
