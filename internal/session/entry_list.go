package session

import (
	"context"

	"github.com/ncheta/ncheta/internal/apperror"
	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/repository"
)

// EntryListItem is the display projection of an entry.
type EntryListItem struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Kind            entry.ContentKind `json:"kind"`
	ItemCount       int               `json:"itemCount"`
	CreatedAt       int64             `json:"createdAt"`
	LastPracticedAt *int64            `json:"lastPracticedAt,omitempty"`
}

func toEntryListItems(entries []entry.Entry) []EntryListItem {
	items := make([]EntryListItem, 0, len(entries))
	for _, e := range entries {
		item := EntryListItem{
			ID:              e.ID,
			Title:           e.Title,
			ItemCount:       entry.ItemCount(e.Content),
			CreatedAt:       e.CreatedAt,
			LastPracticedAt: e.LastPracticedAt,
		}
		if e.Content != nil {
			item.Kind = e.Content.Kind()
		}
		items = append(items, item)
	}
	return items
}

// EntryListSession follows the saved entries and exposes delete and sync.
type EntryListSession struct {
	repo    EntryRepository
	premium PremiumStatus
	scope   *scope

	entries *observable.Value[[]EntryListItem]
	message *observable.Value[string]
}

func NewEntryListSession(ctx context.Context, repo EntryRepository, premium PremiumStatus) *EntryListSession {
	s := &EntryListSession{
		repo:    repo,
		premium: premium,
		scope:   newScope(ctx),
		message: observable.NewValue(""),
	}
	s.entries = observable.Map(s.scope.ctx, repo.GetAllEntries(), toEntryListItems)
	return s
}

// Entries is the live list, newest first.
func (s *EntryListSession) Entries() observable.Observable[[]EntryListItem] {
	return s.entries
}

// Message is a transient notice for the user; empty when there is none.
func (s *EntryListSession) Message() observable.Observable[string] {
	return s.message
}

func (s *EntryListSession) ClearMessage() {
	s.message.Set("")
}

func (s *EntryListSession) Close() {
	s.scope.close()
}

// Delete removes the entry from this device.
func (s *EntryListSession) Delete(id string) {
	s.scope.run(func(ctx context.Context) {
		if err := s.repo.DeleteEntryByID(ctx, id); err != nil {
			s.message.Set(apperror.Message(err))
		}
	})
}

// Sync replaces the local entries with the remote copy for premium users.
func (s *EntryListSession) Sync() repository.SyncStatus {
	status := repository.SyncSkipped
	s.scope.run(func(ctx context.Context) {
		status = s.repo.SyncRemoteEntries(ctx, s.premium.IsPremium())
	})
	switch status {
	case repository.SyncReplaced:
		s.message.Set("Entries synced.")
	case repository.SyncFailed:
		s.message.Set("Sync failed. Your entries on this device are unchanged.")
	}
	return status
}
