package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CodeAndCandlesticks/market-sentiment/lib/types"
)

// CSVStore keeps the sentiment log as a CSV file. Every upsert reads the whole table,
// changes it in memory and replaces the file, so the file is never half written.
// It is not safe for concurrent processes.
type CSVStore struct {
	Path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{Path: path}
}

func (s *CSVStore) Upsert(ctx context.Context, record types.SentimentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.DateKey == "" {
		return fmt.Errorf("%w: record has no date key", ErrStore)
	}

	rows, err := s.readRows()
	if err != nil {
		return err
	}

	row := toRow(record)
	updated := false
	for i, existing := range rows {
		if i == 0 {
			continue
		}
		if len(existing) > 0 && existing[0] == record.DateKey {
			rows[i] = row
			updated = true
			break
		}
	}
	if !updated {
		if len(rows) == 0 {
			rows = append(rows, Header)
		}
		rows = append(rows, row)
	}

	return s.writeRows(rows)
}

// Records returns the stored records in file order. Row 0 is always a header, whatever
// its column names.
func (s *CSVStore) Records() ([]types.SentimentRecord, error) {
	rows, err := s.readRows()
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	records := make([]types.SentimentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, fromRow(row))
	}
	return records, nil
}

func (s *CSVStore) readRows() ([][]string, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrStore, s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStore, s.Path, err)
	}
	return rows, nil
}

func (s *CSVStore) writeRows(rows [][]string) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file in %s: %w", ErrStore, dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", ErrStore, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing %s: %w", ErrStore, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrStore, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrStore, tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrStore, s.Path, err)
	}
	return nil
}
