package remote

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ncheta/ncheta/internal/entry"
)

// SQLStore keeps remote entries in the remote_entries table of a MySQL or
// Postgres database.
type SQLStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type remoteEntryRecord struct {
	UserKey   string `db:"user_key"`
	EntryID   string `db:"entry_id"`
	Document  string `db:"document"`
	CreatedAt int64  `db:"created_at"`
}

func (s *SQLStore) upsertQuery() string {
	if sqlx.BindType(s.db.DriverName()) == sqlx.DOLLAR {
		return `INSERT INTO remote_entries (user_key, entry_id, document, created_at)
VALUES (:user_key, :entry_id, :document, :created_at)
ON CONFLICT (user_key, entry_id) DO UPDATE SET document = EXCLUDED.document, created_at = EXCLUDED.created_at, updated_at = NOW()`
	}
	return `INSERT INTO remote_entries (user_key, entry_id, document, created_at)
VALUES (:user_key, :entry_id, :document, :created_at)
ON DUPLICATE KEY UPDATE document = VALUES(document), created_at = VALUES(created_at)`
}

func (s *SQLStore) Upsert(ctx context.Context, userKey string, e entry.Entry) error {
	document, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("json.Marshal(entry %s) > %w", e.ID, err)
	}
	record := remoteEntryRecord{
		UserKey:   userKey,
		EntryID:   e.ID,
		Document:  string(document),
		CreatedAt: e.CreatedAt,
	}
	if _, err := s.db.NamedExecContext(ctx, s.upsertQuery(), record); err != nil {
		return fmt.Errorf("db.NamedExecContext(upsert remote entry %s) > %w", e.ID, err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, userKey string) ([]entry.Entry, error) {
	query := s.db.Rebind("SELECT document FROM remote_entries WHERE user_key = ? ORDER BY created_at DESC, entry_id")
	var documents []string
	if err := s.db.SelectContext(ctx, &documents, query, userKey); err != nil {
		return nil, fmt.Errorf("db.SelectContext(remote_entries) > %w", err)
	}

	entries := make([]entry.Entry, 0, len(documents))
	for _, document := range documents {
		var e entry.Entry
		if err := json.Unmarshal([]byte(document), &e); err != nil {
			return nil, fmt.Errorf("json.Unmarshal(remote entry) > %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
