package sink

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hugo-lorenzo-mato/debugkit/internal/core"
	"github.com/hugo-lorenzo-mato/debugkit/internal/logging"
)

//go:embed schema.sql
var sqliteSchema string

// SQLiteSink appends entries to the log_entries table of a SQLite database.
// The database is opened on first write, and reopened when the configured
// path changes.
type SQLiteSink struct {
	mu     sync.Mutex
	path   func() string
	db     *sql.DB
	dbPath string
	logger *logging.Logger
}

// NewSQLiteSink creates a sink for the database at the path returned by path.
func NewSQLiteSink(path func() string, logger *logging.Logger) *SQLiteSink {
	return &SQLiteSink{
		path:   path,
		logger: logging.OrNop(logger).WithDriver("sqlite"),
	}
}

func (s *SQLiteSink) open() (*sql.DB, error) {
	path := s.path()
	if path == "" {
		return nil, core.ErrValidation(core.CodeInvalidSink, "sqlite path is empty")
	}
	if s.db != nil && s.dbPath == path {
		return s.db, nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, core.ErrIO(core.CodeSinkOpen, "creating sqlite directory", err).WithDetail("path", path)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, core.ErrIO(core.CodeSinkOpen, "opening sqlite database", err).WithDetail("path", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range splitStatements(sqliteSchema) {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, core.ErrIO(core.CodeSinkOpen, "creating log_entries table", err).WithDetail("path", path)
		}
	}
	s.logger.Debug("sqlite sink opened", "path", path)
	s.db = db
	s.dbPath = path
	return db, nil
}

// Write inserts one row.
func (s *SQLiteSink) Write(entry core.LogEntry) error {
	ctxJSON, err := core.Marshal(entry.Context)
	if err != nil {
		return core.ErrIO(core.CodeSinkWrite, "encoding context", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return err
	}
	_, err = db.Exec(
		"INSERT INTO log_entries (timestamp, level, message, context) VALUES (?, ?, ?, ?)",
		entry.Time.Format(core.TimestampLayout), string(entry.Level), entry.Message, string(ctxJSON),
	)
	if err != nil {
		return core.ErrIO(core.CodeSinkWrite, "inserting log entry", err)
	}
	return nil
}

// Entries reads back up to limit of the most recent entries, oldest first.
// A non-positive limit returns every row.
func (s *SQLiteSink) Entries(ctx context.Context, limit int) ([]core.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return nil, err
	}
	query := "SELECT timestamp, level, message, context FROM (SELECT * FROM log_entries ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	query += ") ORDER BY id ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.ErrIO(core.CodeSinkOpen, "querying log entries", err)
	}
	defer rows.Close()

	var out []core.LogEntry
	for rows.Next() {
		var ts, level, msg, ctxJSON string
		if err := rows.Scan(&ts, &level, &msg, &ctxJSON); err != nil {
			return nil, fmt.Errorf("scanning log entry: %w", err)
		}
		t, err := time.ParseInLocation(core.TimestampLayout, ts, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", ts, err)
		}
		var c core.Context
		if err := json.Unmarshal([]byte(ctxJSON), &c); err != nil {
			return nil, fmt.Errorf("decoding context: %w", err)
		}
		out = append(out, core.LogEntry{Time: t, Level: core.Level(level), Message: msg, Context: c})
	}
	return out, rows.Err()
}

// Close closes the database if it was opened.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.dbPath = ""
	return err
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
