package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Entry is one recorded completion.
type Entry struct {
	// ID is a server-assigned UUID.
	ID string `json:"id"`

	// RecordedAt is when the completion finished, in UTC.
	RecordedAt time.Time `json:"recorded_at"`

	// RequestID correlates the entry with request logs.
	RequestID string `json:"request_id"`

	// Alias is the model alias the client asked for.
	Alias string `json:"alias"`

	// Provider is the provider that served the request.
	Provider string `json:"provider"`

	// Model is the upstream model identifier after prefix stripping.
	Model string `json:"model"`

	// PromptTokens, CompletionTokens, and TotalTokens mirror the upstream
	// usage block. All zero when the request failed.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Streamed reports whether the client received an emulated stream.
	Streamed bool `json:"streamed"`

	// Status is "ok" or "error".
	Status string `json:"status"`
}

// Entry statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

const schema = `
CREATE TABLE IF NOT EXISTS completions (
	id                TEXT PRIMARY KEY,
	recorded_at       TEXT NOT NULL,
	request_id        TEXT NOT NULL DEFAULT '',
	alias             TEXT NOT NULL,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	streamed          INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completions_recorded_at ON completions (recorded_at);
CREATE INDEX IF NOT EXISTS idx_completions_alias ON completions (alias);
`

// Store persists completion usage in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the usage database at path and applies
// the schema. Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open usage database: %w", err)
	}

	// A single writer keeps SQLite simple under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure usage database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply usage schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record inserts one entry. A zero ID or RecordedAt is filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}

	streamed := 0
	if e.Streamed {
		streamed = 1
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO completions
			(id, recorded_at, request_id, alias, provider, model,
			 prompt_tokens, completion_tokens, total_tokens, streamed, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RecordedAt.Format(time.RFC3339Nano), e.RequestID,
		e.Alias, e.Provider, e.Model,
		e.PromptTokens, e.CompletionTokens, e.TotalTokens,
		streamed, e.Status,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first, up to limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recorded_at, request_id, alias, provider, model,
			prompt_tokens, completion_tokens, total_tokens, streamed, status
		 FROM completions
		 ORDER BY recorded_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			recorded string
			streamed int
		)
		if err := rows.Scan(&e.ID, &recorded, &e.RequestID, &e.Alias, &e.Provider, &e.Model,
			&e.PromptTokens, &e.CompletionTokens, &e.TotalTokens, &streamed, &e.Status); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recorded); err == nil {
			e.RecordedAt = t
		}
		e.Streamed = streamed != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage rows: %w", err)
	}

	return entries, nil
}

// TotalsByAlias returns aggregate token counts per alias.
func (s *Store) TotalsByAlias(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias, COALESCE(SUM(total_tokens), 0) FROM completions GROUP BY alias`)
	if err != nil {
		return nil, fmt.Errorf("query usage totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var (
			alias string
			total int
		)
		if err := rows.Scan(&alias, &total); err != nil {
			return nil, fmt.Errorf("scan usage total: %w", err)
		}
		totals[alias] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage totals: %w", err)
	}

	return totals, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
