package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iwvelando/market-score/internal/journal"
	"github.com/iwvelando/market-score/internal/keyword"
	"github.com/iwvelando/market-score/internal/market"
	"github.com/iwvelando/market-score/internal/scoring"
	"github.com/iwvelando/market-score/internal/status"
	"go.uber.org/zap"
)

const selectKeyword = `SELECT id, keyword, market, observation, structural, catalog, relevance,
	competition, notes, status, manually_set, market_score, breakdown FROM keywords`

// Save inserts or replaces rec. History entries beyond those already stored
// are appended; stored history rows are never updated.
func (s *Store) Save(ctx context.Context, rec keyword.Record) error {
	observation, err := json.Marshal(rec.Observation)
	if err != nil {
		return fmt.Errorf("failed to encode observation: %w", err)
	}
	structural, err := json.Marshal(rec.Structural)
	if err != nil {
		return fmt.Errorf("failed to encode structural checklist: %w", err)
	}
	catalog, err := json.Marshal(rec.CatalogSignals)
	if err != nil {
		return fmt.Errorf("failed to encode catalog signals: %w", err)
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.timestamp()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO keywords (id, keyword, market, observation, structural, catalog, relevance,
			competition, notes, status, manually_set, market_score, breakdown, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			keyword = excluded.keyword,
			market = excluded.market,
			observation = excluded.observation,
			structural = excluded.structural,
			catalog = excluded.catalog,
			relevance = excluded.relevance,
			competition = excluded.competition,
			notes = excluded.notes,
			status = excluded.status,
			manually_set = excluded.manually_set,
			market_score = excluded.market_score,
			breakdown = excluded.breakdown,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Keyword, rec.Market, string(observation), string(structural), string(catalog),
		string(rec.Relevance), string(rec.Competition), rec.Notes,
		string(rec.Lifecycle.Status), rec.Lifecycle.ManuallySet, rec.MarketScore, string(breakdown),
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save keyword %s: %w", rec.ID, err)
	}

	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM history WHERE keyword_id = ?`, rec.ID).Scan(&stored); err != nil {
		return fmt.Errorf("failed to count history for %s: %w", rec.ID, err)
	}
	if stored > len(rec.History) {
		return fmt.Errorf("keyword %s has %d stored entries but record carries %d: %w", rec.ID, stored, len(rec.History), ErrHistoryRewritten)
	}

	for _, entry := range rec.History[stored:] {
		oldValue, err := json.Marshal(entry.OldValue)
		if err != nil {
			return fmt.Errorf("failed to encode history value: %w", err)
		}
		newValue, err := json.Marshal(entry.NewValue)
		if err != nil {
			return fmt.Errorf("failed to encode history value: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO history (keyword_id, entry_id, ts, field, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, entry.ID, entry.Timestamp.UTC().Format(time.RFC3339Nano), string(entry.Field),
			string(oldValue), string(newValue),
		)
		if err != nil {
			return fmt.Errorf("failed to append history entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit keyword %s: %w", rec.ID, err)
	}

	s.logger.Debug("keyword saved",
		zap.String("op", "store.Save"),
		zap.String("id", rec.ID),
		zap.Int("newHistoryEntries", len(rec.History)-stored),
	)
	return nil
}

// Get loads one record with its full history in append order.
func (s *Store) Get(ctx context.Context, id string) (keyword.Record, error) {
	row := s.db.QueryRowContext(ctx, selectKeyword+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return keyword.Record{}, fmt.Errorf("keyword %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return keyword.Record{}, err
	}

	rec.History, err = s.history(ctx, id)
	if err != nil {
		return keyword.Record{}, err
	}
	return rec, nil
}

// List returns every record, highest score first, with history attached.
func (s *Store) List(ctx context.Context) ([]keyword.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectKeyword+` ORDER BY market_score DESC, keyword ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	var records []keyword.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	_ = rows.Close()

	for i := range records {
		records[i].History, err = s.history(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Delete removes a record and its history.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM keywords WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete keyword %s: %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("keyword %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) history(ctx context.Context, id string) ([]journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry_id, ts, field, old_value, new_value FROM history WHERE keyword_id = ? ORDER BY seq ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var ts, field, oldValue, newValue string
		if err := rows.Scan(&entry.ID, &ts, &field, &oldValue, &newValue); err != nil {
			return nil, fmt.Errorf("failed to scan history for %s: %w", id, err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q in history for %s: %w", ts, id, err)
		}
		entry.Field = journal.Field(field)
		if entry.OldValue, err = decodeValue(oldValue); err != nil {
			return nil, fmt.Errorf("invalid history value for %s: %w", id, err)
		}
		if entry.NewValue, err = decodeValue(newValue); err != nil {
			return nil, fmt.Errorf("invalid history value for %s: %w", id, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", id, err)
	}
	return entries, nil
}

// decodeValue keeps numbers as json.Number so integers survive the round trip.
func decodeValue(raw string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (keyword.Record, error) {
	var rec keyword.Record
	var observation, structural, catalog, breakdown string
	var relevance, competition, lifecycle string

	err := row.Scan(&rec.ID, &rec.Keyword, &rec.Market, &observation, &structural, &catalog,
		&relevance, &competition, &rec.Notes, &lifecycle, &rec.Lifecycle.ManuallySet,
		&rec.MarketScore, &breakdown)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan keyword: %w", err)
	}

	rec.Relevance = keyword.Level(relevance)
	rec.Competition = keyword.Level(competition)
	rec.Lifecycle.Status = status.Status(lifecycle)

	var obs market.Observation
	if err := json.Unmarshal([]byte(observation), &obs); err != nil {
		return rec, fmt.Errorf("invalid observation for keyword %s: %w", rec.ID, err)
	}
	rec.Observation = obs
	if err := json.Unmarshal([]byte(structural), &rec.Structural); err != nil {
		return rec, fmt.Errorf("invalid structural checklist for keyword %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(catalog), &rec.CatalogSignals); err != nil {
		return rec, fmt.Errorf("invalid catalog signals for keyword %s: %w", rec.ID, err)
	}
	var b scoring.Breakdown
	if err := json.Unmarshal([]byte(breakdown), &b); err != nil {
		return rec, fmt.Errorf("invalid breakdown for keyword %s: %w", rec.ID, err)
	}
	rec.Breakdown = b
	return rec, nil
}
