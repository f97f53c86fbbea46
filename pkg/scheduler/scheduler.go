// Package scheduler triggers maintenance cycles periodically and on demand.
// Overlapping triggers are rejected by the orchestrator, the scheduler only logs them.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedkeeper/pkg/domain"
	"github.com/umputun/feedkeeper/pkg/maintenance"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner
//go:generate moq -out mocks/cleaner.go -pkg mocks -skip-ensure -fmt goimports . Cleaner

// Runner executes a single maintenance cycle
type Runner interface {
	Run(ctx context.Context, opts maintenance.RunOptions) (domain.CycleReport, error)
}

// Cleaner removes history older than retention
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// Params groups scheduler dependencies and settings. Cleaner is optional.
type Params struct {
	Runner  Runner
	Cleaner Cleaner

	Interval   time.Duration
	AutoAdd    bool // discovery in scheduled cycles
	RunOnStart bool
	DryRun     bool
	SkipSearch bool
	Retention  time.Duration
}

// Scheduler runs maintenance cycles on a fixed interval
type Scheduler struct {
	runner     Runner
	cleaner    Cleaner
	interval   time.Duration
	autoAdd    bool
	runOnStart bool
	dryRun     bool
	skipSearch bool
	retention  time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler instance
func NewScheduler(params Params) *Scheduler {
	if params.Interval <= 0 {
		params.Interval = 7 * 24 * time.Hour
	}
	return &Scheduler{
		runner:     params.Runner,
		cleaner:    params.Cleaner,
		interval:   params.Interval,
		autoAdd:    params.AutoAdd,
		runOnStart: params.RunOnStart,
		dryRun:     params.DryRun,
		skipSearch: params.SkipSearch,
		retention:  params.Retention,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.maintenanceWorker(ctx)

	lgr.Printf("[INFO] scheduler started with interval %v, auto-add: %v, run on start: %v",
		s.interval, s.autoAdd, s.runOnStart)
}

// Stop gracefully stops the scheduler, waiting for the running cycle to finish
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RunNow triggers an immediate cycle and waits for it. Returns maintenance.ErrCycleInProgress
// if another cycle is running.
func (s *Scheduler) RunNow(ctx context.Context, autoAdd bool) (domain.CycleReport, error) {
	lgr.Printf("[INFO] triggered immediate maintenance, auto-add: %v", autoAdd)
	return s.runCycle(ctx, autoAdd)
}

func (s *Scheduler) maintenanceWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.runOnStart {
		s.scheduledCycle(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scheduledCycle(ctx)
		}
	}
}

func (s *Scheduler) scheduledCycle(ctx context.Context) {
	if _, err := s.runCycle(ctx, s.autoAdd); err != nil {
		if errors.Is(err, maintenance.ErrCycleInProgress) {
			lgr.Printf("[INFO] scheduled maintenance skipped, another cycle is in progress")
			return
		}
		lgr.Printf("[ERROR] scheduled maintenance failed: %v", err)
	}
}

func (s *Scheduler) runCycle(ctx context.Context, autoAdd bool) (domain.CycleReport, error) {
	report, err := s.runner.Run(ctx, maintenance.RunOptions{AutoAdd: autoAdd, DryRun: s.dryRun, SkipSearch: s.skipSearch})
	if err != nil {
		return report, err
	}
	s.cleanupHistory(ctx)
	return report, nil
}

func (s *Scheduler) cleanupHistory(ctx context.Context) {
	if s.cleaner == nil || s.retention <= 0 {
		return
	}
	removed, err := s.cleaner.Cleanup(ctx, s.retention)
	if err != nil {
		lgr.Printf("[WARN] failed to cleanup maintenance history: %v", err)
		return
	}
	if removed > 0 {
		lgr.Printf("[INFO] removed %d maintenance runs older than %v", removed, s.retention)
	}
}
