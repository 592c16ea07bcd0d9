// Package scheduler runs the periodic remote sync.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/ncheta/ncheta/internal/repository"
)

type Syncer interface {
	SyncRemoteEntries(ctx context.Context, isPremium bool) repository.SyncStatus
}

type PremiumStatus interface {
	IsPremium() bool
}

// Scheduler syncs remote entries every interval while it runs.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	syncer     Syncer
	premium    PremiumStatus
	interval   time.Duration
	runOnStart bool
	logger     *slog.Logger

	mu   sync.Mutex
	last repository.SyncStatus
}

func New(syncer Syncer, premium PremiumStatus, interval time.Duration, runOnStart bool) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		syncer:     syncer,
		premium:    premium,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     slog.Default(),
	}
}

// Run schedules the sync job and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("sync interval must be positive")
	}

	job := s.scheduler.Every(s.interval)
	if !s.runOnStart {
		job = job.WaitForSchedule()
	}
	if _, err := job.Do(s.RunNow, ctx); err != nil {
		return fmt.Errorf("scheduler.Do() > %w", err)
	}

	s.logger.Info("starting sync scheduler", slog.Duration("interval", s.interval))
	s.scheduler.StartAsync()
	<-ctx.Done()
	s.scheduler.Stop()
	s.logger.Info("stopped sync scheduler")
	return nil
}

// RunNow syncs once with the current premium flag.
func (s *Scheduler) RunNow(ctx context.Context) repository.SyncStatus {
	isPremium := s.premium != nil && s.premium.IsPremium()
	status := s.syncer.SyncRemoteEntries(ctx, isPremium)

	s.mu.Lock()
	s.last = status
	s.mu.Unlock()

	s.logger.Debug("scheduled sync finished",
		slog.Bool("premium", isPremium),
		slog.String("status", string(status)),
	)
	return status
}

// LastStatus returns the status of the most recent sync, "" before the first one.
func (s *Scheduler) LastStatus() repository.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
