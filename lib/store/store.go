// Package store persists sentiment records, one per date key.
package store

import (
	"context"
	"errors"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/logger"
	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

// ErrStore wraps every read or write failure of a backing store.
var ErrStore = errors.New("store failure")

// Store inserts a record, or replaces the record already held for the same DateKey.
type Store interface {
	Upsert(ctx context.Context, record types.SentimentRecord) error
}

// Multi writes to each store in order and stops at the first failure.
type Multi []Store

func (m Multi) Upsert(ctx context.Context, record types.SentimentRecord) error {
	for _, s := range m {
		if err := s.Upsert(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Mirror is a secondary copy of the log. Its failures are logged at WARNING and never
// fail the run, since the primary store already holds the record.
type Mirror struct {
	Store  Store
	Logger *logger.Logger
}

func (m *Mirror) Upsert(ctx context.Context, record types.SentimentRecord) error {
	if err := m.Store.Upsert(ctx, record); err != nil {
		if m.Logger != nil {
			m.Logger.Warning("Mirror write for %s failed: %v", record.DateKey, err)
		}
	}
	return nil
}

// Header is the first row of the CSV table.
var Header = []string{"date_key", "publish_date_raw", "label", "provider", "model_version", "content_hash", "raw_response"}

func toRow(r types.SentimentRecord) []string {
	return []string{r.DateKey, r.PublishDateRaw, string(r.Label), r.ModelProvider, r.ModelVersion, r.ContentHash, r.RawModelResponse}
}

func fromRow(row []string) types.SentimentRecord {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return types.SentimentRecord{
		DateKey:          field(0),
		PublishDateRaw:   field(1),
		Label:            types.Label(field(2)),
		ModelProvider:    field(3),
		ModelVersion:     field(4),
		ContentHash:      field(5),
		RawModelResponse: field(6),
	}
}
