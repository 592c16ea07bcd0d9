// Package repository combines the local and remote entry stores: local writes
// always happen first, and the remote copy is kept for premium users.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/auth"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/remote"
	"github.com/ncheta/ncheta/internal/store"
)

// SaveResult reports what happened to the remote copy of an inserted entry.
type SaveResult struct {
	// Synced is true when the entry was also written remotely.
	Synced bool
	// RemoteErr is the remote failure, if a remote write was attempted and failed.
	RemoteErr error
}

// SyncStatus is the outcome of SyncRemoteEntries.
type SyncStatus string

const (
	SyncSkipped  SyncStatus = "skipped"
	SyncReplaced SyncStatus = "replaced"
	SyncFailed   SyncStatus = "failed"
)

type Repository struct {
	local    store.LocalStore
	remote   remote.Store
	identity auth.Identity
	now      func() time.Time
}

// New creates a repository. remoteStore may be nil when no remote backend is configured.
func New(local store.LocalStore, remoteStore remote.Store, identity auth.Identity) *Repository {
	return &Repository{
		local:    local,
		remote:   remoteStore,
		identity: identity,
		now:      time.Now,
	}
}

// userKey returns the remote partition of the signed-in user, or "" when signed out.
func (r *Repository) userKey() string {
	if r.identity == nil {
		return ""
	}
	user := r.identity.CurrentUser()
	if user == nil {
		return ""
	}
	return user.Email
}

// InsertEntry stores e locally and, for a signed-in premium user, remotely.
// A remote failure does not fail the insert; it is logged and reported in SaveResult.
func (r *Repository) InsertEntry(ctx context.Context, e entry.Entry, isPremium bool) (SaveResult, error) {
	if err := e.Validate(); err != nil {
		return SaveResult{}, err
	}
	if err := r.local.Upsert(ctx, e); err != nil {
		return SaveResult{}, fmt.Errorf("local.Upsert() > %w", err)
	}

	key := r.userKey()
	if !isPremium || key == "" || r.remote == nil {
		return SaveResult{}, nil
	}
	if err := r.remote.Upsert(ctx, key, e); err != nil {
		remoteErr := apperror.NewRemote("upsert remote entry", err)
		slog.Default().Error("failed to save entry remotely", "id", e.ID, "error", err)
		return SaveResult{RemoteErr: remoteErr}, nil
	}
	return SaveResult{Synced: true}, nil
}

// GetAllEntries publishes the local collection, newest first.
func (r *Repository) GetAllEntries() observable.Observable[[]entry.Entry] {
	return r.local.Entries()
}

// GetEntryByID returns nil when no local entry has id.
func (r *Repository) GetEntryByID(ctx context.Context, id string) (*entry.Entry, error) {
	e, err := r.local.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("local.FindByID() > %w", err)
	}
	return e, nil
}

// DeleteEntryByID removes the local entry only. A remote copy survives and
// comes back on the next sync.
func (r *Repository) DeleteEntryByID(ctx context.Context, id string) error {
	if err := r.local.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("local.DeleteByID() > %w", err)
	}
	return nil
}

// MarkPracticed stamps the local entry with the time a practice session completed.
func (r *Repository) MarkPracticed(ctx context.Context, id string, at time.Time) error {
	if err := r.local.MarkPracticed(ctx, id, at.UnixMilli()); err != nil {
		return fmt.Errorf("local.MarkPracticed() > %w", err)
	}
	return nil
}

// SyncRemoteEntries replaces the local collection with the remote one for a
// signed-in premium user. Failures are logged, never returned. A remote
// collection holding any invalid entry leaves the local store untouched.
func (r *Repository) SyncRemoteEntries(ctx context.Context, isPremium bool) SyncStatus {
	key := r.userKey()
	if !isPremium || key == "" || r.remote == nil {
		slog.Default().Debug("skipping remote sync", "premium", isPremium, "signedIn", key != "", "remote", r.remote != nil)
		return SyncSkipped
	}

	entries, err := r.remote.List(ctx, key)
	if err != nil {
		slog.Default().Error("failed to list remote entries", "error", err)
		return SyncFailed
	}
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			slog.Default().Error("refusing to sync an invalid remote entry", "id", e.ID, "error", err)
			return SyncFailed
		}
	}
	if err := r.local.ReplaceAll(ctx, entries); err != nil {
		slog.Default().Error("failed to replace local entries", "error", err)
		return SyncFailed
	}
	slog.Default().Info("synced remote entries", "count", len(entries))
	return SyncReplaced
}
