// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists the queries run against the dataset in a
// SQLite database so they can be listed, replayed, and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const dbFile = "history.db"

// timeLayout is fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned by Get for an unknown entry ID.
var ErrNotFound = errors.New("history entry not found")

// Entry is one executed query.
type Entry struct {
	ID        string          `json:"id" yaml:"id"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	PaperType types.PaperType `json:"paper_type" yaml:"paper_type"`

	// Selection is the JSON form of the user's choices, empty for raw queries.
	Selection string `json:"selection,omitempty" yaml:"selection,omitempty"`
	Query     string `json:"query" yaml:"query"`

	Rows     int           `json:"rows" yaml:"rows"`
	Papers   int           `json:"papers" yaml:"papers"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Cached   bool          `json:"cached" yaml:"cached"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the query returned an error.
func (e Entry) Failed() bool { return e.Error != "" }

// Store manages the history database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(cfg.Dir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS queries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			paper_type TEXT NOT NULL,
			selection TEXT,
			query TEXT NOT NULL,
			row_count INTEGER NOT NULL DEFAULT 0,
			paper_count INTEGER NOT NULL DEFAULT 0,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			cached INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_created_at ON queries(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_paper_type ON queries(paper_type)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores e and returns it with ID and CreatedAt filled in when
// they were empty.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.PaperType == "" {
		e.PaperType = types.PaperAny
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO queries (id, created_at, paper_type, selection, query, row_count, paper_count, duration_ns, cached, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Format(timeLayout), string(e.PaperType), e.Selection, e.Query,
		e.Rows, e.Papers, int64(e.Duration), e.Cached, e.Error,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting history entry: %w", err)
	}
	return e, nil
}

// Filter selects history entries.
type Filter struct {
	// Limit caps the result count. Zero means 20.
	Limit int

	// PaperType keeps entries of one paper type.
	PaperType types.PaperType

	// Contains keeps entries whose query text contains the substring.
	Contains string

	// FailedOnly keeps entries that returned an error.
	FailedOnly bool
}

const defaultLimit = 20

// Recent returns matching entries, newest first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, created_at, paper_type, selection, query, row_count, paper_count, duration_ns, cached, error
		FROM queries WHERE 1=1`)
	if f.PaperType != "" {
		qb.WriteString(` AND paper_type = ?`)
		args = append(args, string(f.PaperType))
	}
	if f.Contains != "" {
		qb.WriteString(` AND instr(query, ?) > 0`)
		args = append(args, f.Contains)
	}
	if f.FailedOnly {
		qb.WriteString(` AND error IS NOT NULL AND error != ''`)
	}
	qb.WriteString(` ORDER BY created_at DESC, rowid DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, paper_type, selection, query, row_count, paper_count, duration_ns, cached, error
		 FROM queries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM queries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e         Entry
		created   string
		paperType string
		selection sql.NullString
		duration  int64
		errText   sql.NullString
	)
	if err := sc.Scan(&e.ID, &created, &paperType, &selection, &e.Query,
		&e.Rows, &e.Papers, &duration, &e.Cached, &errText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning row: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	e.PaperType = types.PaperType(paperType)
	e.Selection = selection.String
	e.Duration = time.Duration(duration)
	e.Error = errText.String
	return e, nil
}
