// Package gate decides whether a fetched article is today's edition.
//
// One invocation walks FETCHED → FRESH → CLASSIFY, or FETCHED → STALE → RETRY_WAIT →
// FETCHED → ... → ABORT. Only one retry is ever taken.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/readability"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

type State string

const (
	Fetched   State = "FETCHED"
	Fresh     State = "FRESH"
	Stale     State = "STALE"
	RetryWait State = "RETRY_WAIT"
	Classify  State = "CLASSIFY"
	Abort     State = "ABORT"
)

// MaxAttempts bounds the fetch attempts of one invocation.
const MaxAttempts = 2

const (
	MinRetryDelay     = 60 * time.Second
	MaxRetryDelay     = 300 * time.Second
	DefaultRetryDelay = MaxRetryDelay
)

// FetchFunc fetches the article and extracts a snapshot.
type FetchFunc func(ctx context.Context) (types.ArticleSnapshot, error)

// Result is the terminal outcome of a gate run.
type Result struct {
	State    State // Classify or Abort
	Snapshot types.ArticleSnapshot
	Today    string
	Attempts int
	Trail    []State
	// Reason is set on Abort: the last staleness message or extraction error.
	Reason string
	// Err is the extraction error of the last attempt when the gate aborted because the
	// page could not be read. It is nil for a stale abort.
	Err error
}

func (r Result) Proceed() bool { return r.State == Classify }

type Gate struct {
	RetryDelay time.Duration
	Now        func() time.Time
	// Sleep waits for d or until ctx is done.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *logger.Logger
}

func New(retryDelay time.Duration, log *logger.Logger) *Gate {
	return &Gate{
		RetryDelay: retryDelay,
		Now:        time.Now,
		Sleep:      SleepContext,
		Logger:     log,
	}
}

// Run fetches up to MaxAttempts times. Stale articles and extraction failures lead to
// RETRY_WAIT and then ABORT; any other fetch error is returned as is. An abort caused by
// extraction failure carries that error in Result.Err.
func (g *Gate) Run(ctx context.Context, fetch FetchFunc) (Result, error) {
	log := g.Logger
	if log == nil {
		log = logger.Discard()
	}
	now := g.Now
	if now == nil {
		now = time.Now
	}
	sleep := g.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var result Result
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		result.Attempts = attempt
		result.Trail = append(result.Trail, Fetched)

		snapshot, err := fetch(ctx)
		if err != nil && !errors.Is(err, readability.ErrExtractionFailed) {
			return result, err
		}

		// Today is taken per attempt so a run straddling midnight compares against the new day.
		result.Today = now().Format(readability.DateKeyLayout)
		result.Snapshot = snapshot

		if err == nil && snapshot.PublishDateKey == result.Today {
			result.Trail = append(result.Trail, Fresh, Classify)
			result.State = Classify
			result.Reason = ""
			result.Err = nil
			return result, nil
		}

		result.Trail = append(result.Trail, Stale)
		result.Err = err
		if err != nil {
			result.Reason = err.Error()
			log.Warning("%v", err)
		} else {
			result.Reason = fmt.Sprintf("Article has not been updated today. Publish time: %s", snapshot.PublishDateRaw)
			log.Info("%s", result.Reason)
		}

		if attempt == MaxAttempts {
			break
		}

		result.Trail = append(result.Trail, RetryWait)
		log.Info("Retrying in %s...", g.RetryDelay)
		if err := sleep(ctx, g.RetryDelay); err != nil {
			return result, err
		}
	}

	result.Trail = append(result.Trail, Abort)
	result.State = Abort
	if result.Err != nil {
		log.Error("Retry failed. Still unable to extract publish date: %s", result.Reason)
	} else {
		log.Info("Retry failed, giving up for today: %s", result.Reason)
	}
	return result, nil
}

// SleepContext is a cancellable time.Sleep.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
