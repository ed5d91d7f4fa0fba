// Package store persists keyword records, their change history and per-market
// score overrides in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrNotFound is returned when a keyword id is not stored.
var ErrNotFound = errors.New("keyword not found")

// ErrHistoryRewritten is returned when a record carries fewer history entries
// than are already stored. History is append-only.
var ErrHistoryRewritten = errors.New("history is append-only")

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
	id            TEXT PRIMARY KEY,
	keyword       TEXT NOT NULL,
	market        TEXT NOT NULL,
	observation   TEXT NOT NULL,
	structural    TEXT NOT NULL,
	catalog       TEXT NOT NULL,
	relevance     TEXT NOT NULL DEFAULT '',
	competition   TEXT NOT NULL DEFAULT '',
	notes         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	manually_set  INTEGER NOT NULL DEFAULT 0,
	market_score  INTEGER NOT NULL DEFAULT 0,
	breakdown     TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	keyword_id TEXT NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
	entry_id   TEXT NOT NULL UNIQUE,
	ts         TEXT NOT NULL,
	field      TEXT NOT NULL,
	old_value  TEXT NOT NULL,
	new_value  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_keyword ON history(keyword_id, seq);

CREATE TABLE IF NOT EXISTS score_overrides (
	market     TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		path = absPath
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	connStr := path + sep + "_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Debug("database opened",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
