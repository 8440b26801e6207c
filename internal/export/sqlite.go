package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/senegalairwatch/senegal-air-watch/internal/weather"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS measurements (
  station  TEXT NOT NULL,
  ts       TEXT NOT NULL,
  variable TEXT NOT NULL,
  value    REAL,
  PRIMARY KEY (station, ts, variable)
);
CREATE INDEX IF NOT EXISTS idx_measurements_ts ON measurements(ts);
`

const upsertMeasurement = `
INSERT INTO measurements (station, ts, variable, value)
VALUES (?, ?, ?, ?)
ON CONFLICT (station, ts, variable) DO UPDATE SET value = excluded.value`

// SQLiteSink stores records as one row per station, hour and variable.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating when needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteSink, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// a single writer avoids "database is locked" during the batch upsert
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return NewSQLiteSink(db)
}

// NewSQLiteSink wraps an open database and applies the schema.
func NewSQLiteSink(db *sql.DB) (*SQLiteSink, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

// Write upserts all records in one transaction. Null values are stored as NULL.
func (s *SQLiteSink) Write(ctx context.Context, records []weather.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertMeasurement)
	if err != nil {
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		ts := r.Time.UTC().Format(time.RFC3339)
		for _, variable := range sortedVariables(r) {
			var value any
			if v, ok := r.Value(variable); ok {
				value = v
			}
			if _, err := stmt.ExecContext(ctx, r.Station, ts, variable, value); err != nil {
				return fmt.Errorf("sqlite upsert %s %s %s: %w", r.Station, ts, variable, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func sortedVariables(r weather.Record) []string {
	vars := make([]string, 0, len(r.Values))
	for k := range r.Values {
		vars = append(vars, k)
	}
	sort.Strings(vars)
	return vars
}

func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "file:") {
		return path, nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", uriPathEscaper.Replace(path)), nil
}

// uriPathEscaper percent-encodes the characters that would end the path part
// of an SQLite URI filename.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")
