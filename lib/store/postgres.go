package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS market_sentiment (
	date_key         DATE PRIMARY KEY,
	publish_date_raw TEXT NOT NULL,
	label            TEXT NOT NULL,
	provider         TEXT NOT NULL,
	model_version    TEXT NOT NULL,
	content_hash     TEXT NOT NULL,
	raw_response     TEXT NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertSQL = `
INSERT INTO market_sentiment (date_key, publish_date_raw, label, provider, model_version, content_hash, raw_response, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (date_key) DO UPDATE SET
	publish_date_raw = EXCLUDED.publish_date_raw,
	label            = EXCLUDED.label,
	provider         = EXCLUDED.provider,
	model_version    = EXCLUDED.model_version,
	content_hash     = EXCLUDED.content_hash,
	raw_response     = EXCLUDED.raw_response,
	updated_at       = now()`

// DefaultTimeout bounds one Postgres operation, connection included.
const DefaultTimeout = 30 * time.Second

// PostgresStore mirrors the log into the market_sentiment table. The primary key on
// date_key gives the same one-row-per-day guarantee as the CSV table.
type PostgresStore struct {
	URL     string
	Timeout time.Duration
}

func NewPostgresStore(databaseURL string) *PostgresStore {
	return &PostgresStore{URL: databaseURL, Timeout: DefaultTimeout}
}

func (s *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *PostgresStore) connect(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to connect to database: %w", ErrStore, err)
	}
	return conn, nil
}

// EnsureSchema creates the table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("%w: creating market_sentiment: %w", ErrStore, err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, r types.SentimentRecord) error {
	date, err := time.Parse("2006-01-02", r.DateKey)
	if err != nil {
		return fmt.Errorf("%w: parsing date key %q: %w", ErrStore, r.DateKey, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, upsertSQL, date, r.PublishDateRaw, string(r.Label), r.ModelProvider, r.ModelVersion, r.ContentHash, r.RawModelResponse)
	if err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrStore, r.DateKey, err)
	}
	return nil
}

// Records reads the mirrored table ordered by date.
func (s *PostgresStore) Records(ctx context.Context) ([]types.SentimentRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, `
		SELECT to_char(date_key, 'YYYY-MM-DD'), publish_date_raw, label, provider, model_version, content_hash, raw_response
		FROM market_sentiment
		ORDER BY date_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying market_sentiment: %w", ErrStore, err)
	}
	defer rows.Close()

	var records []types.SentimentRecord
	for rows.Next() {
		var r types.SentimentRecord
		var label string
		if err := rows.Scan(&r.DateKey, &r.PublishDateRaw, &label, &r.ModelProvider, &r.ModelVersion, &r.ContentHash, &r.RawModelResponse); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %w", ErrStore, err)
		}
		r.Label = types.Label(label)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading rows: %w", ErrStore, err)
	}
	return records, nil
}
