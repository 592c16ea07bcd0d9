// Package session holds the screen-level state machines of the app. Each
// session owns a scope that is cancelled once, by Close, and publishes its UI
// state as an observable value.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/ncheta/ncheta/internal/entry"
	"github.com/ncheta/ncheta/internal/observable"
	"github.com/ncheta/ncheta/internal/repository"
)

//go:generate mockgen -source=session.go -destination=../mocks/session/mock_session.go -package=mock_session

// EntryRepository is the part of repository.Repository the sessions use.
type EntryRepository interface {
	InsertEntry(ctx context.Context, e entry.Entry, isPremium bool) (repository.SaveResult, error)
	GetAllEntries() observable.Observable[[]entry.Entry]
	GetEntryByID(ctx context.Context, id string) (*entry.Entry, error)
	DeleteEntryByID(ctx context.Context, id string) error
	MarkPracticed(ctx context.Context, id string, at time.Time) error
	SyncRemoteEntries(ctx context.Context, isPremium bool) repository.SyncStatus
}

// PremiumStatus reports the current premium entitlement.
type PremiumStatus interface {
	IsPremium() bool
}

var _ EntryRepository = (*repository.Repository)(nil)

// scope is the cancellable lifetime of a session.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newScope(parent context.Context) *scope {
	ctx, cancel := context.WithCancel(parent)
	return &scope{ctx: ctx, cancel: cancel}
}

func (s *scope) enter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// run executes fn with the scope context and blocks until it returns.
// It does nothing once the scope is closed.
func (s *scope) run(fn func(ctx context.Context)) {
	if !s.enter() {
		return
	}
	defer s.wg.Done()
	fn(s.ctx)
}

// close cancels the scope and waits for running work. It is safe to call more than once.
func (s *scope) close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}
