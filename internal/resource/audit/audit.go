// Package audit is an optional SQLite-backed sink recording reason()
// calls for later replay or review. Grounded on the teacher's
// LocalStore/reasoning_traces table (internal/store/local_core.go):
// same column shape (prompt, response, model, tokens, duration,
// success), reduced to the fields reason() actually has available and
// switched from the cgo sqlite3 driver to the pure-Go modernc.org/
// sqlite driver already in go.mod.
//
// Unlike llm/mcp/a2a/human/knowledge, audit is not a resource kind a
// Dana program acquires with use() — it is wired as a side observer on
// the reason.Reasoner so it never sits on the interpreter's hot path.
package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dana-lang/dana/internal/logging"
)

// Trace is one recorded reason() call.
type Trace struct {
	Prompt     string
	Response   string
	Model      string
	TokensUsed int
	DurationMS int64
	Success    bool
	Error      string
}

// Sink records traces. A nil *Sink is valid and records nothing, so
// callers can wire audit unconditionally and only pay for it when a
// path is configured.
type Sink struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates (or reuses) the SQLite database at path and ensures the
// reasoning_traces table exists.
func Open(path string) (*Sink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: create dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: set busy_timeout: %w", err)
	}
	if _, err := db.Exec(reasoningTracesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &Sink{db: db}, nil
}

const reasoningTracesTable = `
CREATE TABLE IF NOT EXISTS reasoning_traces (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prompt TEXT NOT NULL,
	response TEXT NOT NULL,
	model TEXT,
	tokens_used INTEGER,
	duration_ms INTEGER,
	success BOOLEAN NOT NULL,
	error_message TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_traces_success ON reasoning_traces(success);
CREATE INDEX IF NOT EXISTS idx_traces_created ON reasoning_traces(created_at);
`

// Record inserts one trace. Failures are logged, not returned — an
// audit write must never fail a reason() call.
func (s *Sink) Record(t Trace) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO reasoning_traces (prompt, response, model, tokens_used, duration_ms, success, error_message) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Prompt, t.Response, t.Model, t.TokensUsed, t.DurationMS, t.Success, t.Error,
	)
	if err != nil {
		logging.Get(logging.CategoryResource).Warnf("audit: record trace: %v", err)
	}
}

// Timed is a convenience wrapper: it runs fn, measures duration, and
// records the result.
func (s *Sink) Timed(prompt, model string, fn func() (response string, err error)) (string, error) {
	start := time.Now()
	resp, err := fn()
	t := Trace{Prompt: prompt, Response: resp, Model: model, DurationMS: time.Since(start).Milliseconds(), Success: err == nil}
	if err != nil {
		t.Error = err.Error()
	}
	s.Record(t)
	return resp, err
}

func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
