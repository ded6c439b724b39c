package digest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alekspetrov/goaltrack/internal/logging"
)

// Scheduler runs the digest generator on a cron schedule.
type Scheduler struct {
	generator *Generator
	config    *Config
	cron      *cron.Cron
	mu        sync.Mutex
	running   bool
	entryID   cron.EntryID
}

// NewScheduler creates a digest scheduler.
func NewScheduler(generator *Generator, config *Config) *Scheduler {
	if config == nil {
		config = DefaultConfig()
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		logging.WithComponent("digest").Warn("Invalid timezone, using UTC",
			slog.String("timezone", config.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	return &Scheduler{
		generator: generator,
		config:    config,
		cron:      cron.New(cron.WithLocation(loc)),
	}
}

// Start begins the scheduler. A disabled config makes Start a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.Enabled {
		logging.WithComponent("digest").Info("Digest scheduler disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if err := s.generator.Run(ctx); err != nil {
			logging.WithComponent("digest").Error("Digest run failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	logging.WithComponent("digest").Info("Digest scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.String("timezone", s.config.Timezone),
		slog.Time("next_run", s.cron.Entry(s.entryID).Next))

	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	logging.WithComponent("digest").Info("Digest scheduler stopped")
}

// NextRun returns the next scheduled run time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
