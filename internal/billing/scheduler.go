package billing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler fires the billing pass on a fixed cron schedule. A tick that
// arrives while the previous pass is still running is dropped, and there is
// no catch-up for missed ticks: cadence is entirely schedule-driven.
type Scheduler struct {
	cron   *cron.Cron
	pass   *Pass
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler registers the pass on the given cron spec (standard five-field
// format, e.g. "*/5 * * * *"). Start must be called to begin ticking.
func NewScheduler(spec string, pass *Pass, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		cron:   cron.New(),
		pass:   pass,
		logger: log.With(slog.String("component", "lease_scheduler")),
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid lease schedule %q: %w", spec, err)
	}

	return s, nil
}

// Start begins firing ticks in the cron's own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("lease scheduler started")
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// in-flight pass has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("lease scheduler stopping")
	return s.cron.Stop()
}

// tick runs one pass unless one is already in flight.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous billing pass still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if _, err := s.pass.Run(context.Background()); err != nil {
		s.logger.Error("billing pass aborted", "error", err)
	}
}
