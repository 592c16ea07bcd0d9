package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Provider names how a user authenticates.
type Provider string

const (
	ProviderPassword Provider = "password"
	ProviderGoogle   Provider = "google"
	ProviderApple    Provider = "apple"
)

const currentSessionSlot = "current"

type userRecord struct {
	UID          string         `db:"uid"`
	Email        string         `db:"email"`
	PasswordHash sql.NullString `db:"password_hash"`
	Provider     Provider       `db:"provider"`
	CreatedAt    int64          `db:"created_at"`
}

// UserRepository stores accounts and the current session token in the local database.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns nil when no account has email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*userRecord, error) {
	var records []userRecord
	query := "SELECT uid, email, password_hash, provider, created_at FROM users WHERE email = ?"
	if err := r.db.SelectContext(ctx, &records, query, email); err != nil {
		return nil, fmt.Errorf("db.SelectContext(users) > %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *UserRepository) Create(ctx context.Context, record userRecord) error {
	query := `INSERT INTO users (uid, email, password_hash, provider, created_at)
VALUES (:uid, :email, :password_hash, :provider, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("db.NamedExecContext(insert user) > %w", err)
	}
	return nil
}

func (r *UserRepository) SaveSession(ctx context.Context, token string, updatedAt int64) error {
	query := `INSERT INTO auth_sessions (slot, token, updated_at) VALUES (?, ?, ?)
ON CONFLICT (slot) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, currentSessionSlot, token, updatedAt); err != nil {
		return fmt.Errorf("db.ExecContext(save session) > %w", err)
	}
	return nil
}

// LoadSession returns an empty token when no session is stored.
func (r *UserRepository) LoadSession(ctx context.Context) (string, error) {
	var tokens []string
	if err := r.db.SelectContext(ctx, &tokens, "SELECT token FROM auth_sessions WHERE slot = ?", currentSessionSlot); err != nil {
		return "", fmt.Errorf("db.SelectContext(auth_sessions) > %w", err)
	}
	if len(tokens) == 0 {
		return "", nil
	}
	return tokens[0], nil
}

func (r *UserRepository) DeleteSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM auth_sessions WHERE slot = ?", currentSessionSlot); err != nil {
		return fmt.Errorf("db.ExecContext(delete session) > %w", err)
	}
	return nil
}
