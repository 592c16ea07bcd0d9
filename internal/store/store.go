// Package store persists entries on the device and publishes the collection as it changes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
)

// LocalStore is the durable on-device collection of entries.
type LocalStore interface {
	// Entries publishes the whole collection, newest first, after every change.
	Entries() observable.Observable[[]entry.Entry]
	FindByID(ctx context.Context, id string) (*entry.Entry, error)
	Upsert(ctx context.Context, e entry.Entry) error
	DeleteByID(ctx context.Context, id string) error
	// ReplaceAll atomically swaps the collection for entries.
	ReplaceAll(ctx context.Context, entries []entry.Entry) error
	MarkPracticed(ctx context.Context, id string, at int64) error
}

type entryRecord struct {
	ID              string        `db:"id"`
	Title           string        `db:"title"`
	SourceText      string        `db:"source_text"`
	InputSourceType string        `db:"input_source_type"`
	ContentType     string        `db:"content_type"`
	Content         string        `db:"content"`
	CreatedAt       int64         `db:"created_at"`
	LastPracticedAt sql.NullInt64 `db:"last_practiced_at"`
}

func newEntryRecord(e entry.Entry) (entryRecord, error) {
	content, err := entry.EncodeContent(e.Content)
	if err != nil {
		return entryRecord{}, fmt.Errorf("entry.EncodeContent(%s) > %w", e.ID, err)
	}
	record := entryRecord{
		ID:              e.ID,
		Title:           e.Title,
		SourceText:      e.SourceText,
		InputSourceType: string(e.InputSourceType),
		ContentType:     string(e.Content.Kind()),
		Content:         string(content),
		CreatedAt:       e.CreatedAt,
	}
	if e.LastPracticedAt != nil {
		record.LastPracticedAt = sql.NullInt64{Int64: *e.LastPracticedAt, Valid: true}
	}
	return record, nil
}

func (r entryRecord) toEntry() (entry.Entry, error) {
	content, err := entry.DecodeContent([]byte(r.Content))
	if err != nil {
		return entry.Entry{}, fmt.Errorf("entry.DecodeContent(%s) > %w", r.ID, err)
	}
	source, err := entry.ParseInputSourceType(r.InputSourceType)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("entry %s > %w", r.ID, err)
	}
	e := entry.Entry{
		ID:              r.ID,
		Title:           r.Title,
		SourceText:      r.SourceText,
		InputSourceType: source,
		Content:         content,
		CreatedAt:       r.CreatedAt,
	}
	if r.LastPracticedAt.Valid {
		practicedAt := r.LastPracticedAt.Int64
		e.LastPracticedAt = &practicedAt
	}
	return e, nil
}

const (
	selectEntriesQuery = `SELECT id, title, source_text, input_source_type, content_type, content, created_at, last_practiced_at
FROM entries ORDER BY created_at DESC, id`
	selectEntryQuery = `SELECT id, title, source_text, input_source_type, content_type, content, created_at, last_practiced_at
FROM entries WHERE id = ?`
	upsertEntryQuery = `INSERT INTO entries (id, title, source_text, input_source_type, content_type, content, created_at, last_practiced_at)
VALUES (:id, :title, :source_text, :input_source_type, :content_type, :content, :created_at, :last_practiced_at)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	source_text = excluded.source_text,
	input_source_type = excluded.input_source_type,
	content_type = excluded.content_type,
	content = excluded.content,
	created_at = excluded.created_at,
	last_practiced_at = excluded.last_practiced_at`
)

// SQLiteStore is a LocalStore over a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
	// mu orders each write with the refresh that publishes it.
	mu      sync.Mutex
	entries *observable.Value[[]entry.Entry]
}

var _ LocalStore = (*SQLiteStore)(nil)

// NewSQLiteStore loads the current collection and returns a store over db.
func NewSQLiteStore(ctx context.Context, db *sqlx.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	entries, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.entries = observable.NewValue(entries)
	return s, nil
}

func (s *SQLiteStore) Entries() observable.Observable[[]entry.Entry] {
	return s.entries
}

// FindAll reads the collection, newest first.
func (s *SQLiteStore) FindAll(ctx context.Context) ([]entry.Entry, error) {
	var records []entryRecord
	if err := s.db.SelectContext(ctx, &records, selectEntriesQuery); err != nil {
		return nil, fmt.Errorf("db.SelectContext(entries) > %w", err)
	}
	entries := make([]entry.Entry, 0, len(records))
	for _, record := range records {
		e, err := record.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// FindByID returns nil when no entry has id.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*entry.Entry, error) {
	var records []entryRecord
	if err := s.db.SelectContext(ctx, &records, selectEntryQuery, id); err != nil {
		return nil, fmt.Errorf("db.SelectContext(entries) > %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	e, err := records[0].toEntry()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, e entry.Entry) error {
	record, err := newEntryRecord(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.NamedExecContext(ctx, upsertEntryQuery, record); err != nil {
		return fmt.Errorf("db.NamedExecContext(upsert entry %s) > %w", e.ID, err)
	}
	return s.refreshLocked(ctx)
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete entry %s) > %w", id, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	return s.refreshLocked(ctx)
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, entries []entry.Entry) error {
	records := make([]entryRecord, 0, len(entries))
	for _, e := range entries {
		record, err := newEntryRecord(e)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("tx.ExecContext(delete entries) > %w", err)
	}
	for _, record := range records {
		if _, err := tx.NamedExecContext(ctx, upsertEntryQuery, record); err != nil {
			return fmt.Errorf("tx.NamedExecContext(insert entry %s) > %w", record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}

	slog.Default().Debug("replaced local entries", "count", len(records))
	return s.refreshLocked(ctx)
}

func (s *SQLiteStore) MarkPracticed(ctx context.Context, id string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "UPDATE entries SET last_practiced_at = ? WHERE id = ?", at, id); err != nil {
		return fmt.Errorf("db.ExecContext(mark practiced %s) > %w", id, err)
	}
	return s.refreshLocked(ctx)
}

func (s *SQLiteStore) refreshLocked(ctx context.Context) error {
	entries, err := s.FindAll(ctx)
	if err != nil {
		return err
	}
	s.entries.Set(entries)
	return nil
}
