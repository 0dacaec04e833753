// Package scheduler runs the pipeline stages on fixed intervals. Every run holds the task's
// named lock, so a slow run makes the next ticks skip instead of piling up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	internalcommon "github.com/goran-ethernal/SafeIndexor/internal/common"
	"github.com/goran-ethernal/SafeIndexor/internal/lock"
	"github.com/goran-ethernal/SafeIndexor/internal/logger"
	"github.com/goran-ethernal/SafeIndexor/internal/metrics"
	"github.com/goran-ethernal/SafeIndexor/pkg/config"
)

// Task names.
const (
	TaskIndexSafes          = "index-safes"
	TaskIndexProxyFactories = "index-proxy-factories"
	TaskIndexTokens         = "index-tokens"
	TaskProcessDecoded      = "process-decoded"
	TaskCheckReorgs         = "check-reorgs"
	TaskDBMaintenance       = "db-maintenance"
)

// Run outcomes reported in metrics.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeCancelled = "cancelled"
	OutcomePanic     = "panic"
	OutcomeSkipped   = "skipped"
)

const releaseTimeout = 5 * time.Second

// TaskFunc is one run of a pipeline stage.
type TaskFunc func(ctx context.Context) error

type task struct {
	name string
	cfg  config.TaskConfig
	fn   TaskFunc
}

// Scheduler runs registered tasks periodically.
type Scheduler struct {
	locker lock.Locker
	log    *logger.Logger

	mu      sync.Mutex
	tasks   []task
	running map[string]context.CancelFunc
}

// New creates a scheduler using locker for mutual exclusion.
func New(locker lock.Locker, log *logger.Logger) *Scheduler {
	return &Scheduler{
		locker:  locker,
		log:     log,
		running: make(map[string]context.CancelFunc),
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(name string, cfg config.TaskConfig, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, task{name: name, cfg: cfg, fn: fn})
}

// Start runs every task right away and then on its interval until ctx is cancelled.
// It returns once all in-flight runs have finished.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	tasks := append([]task(nil), s.tasks...)
	s.mu.Unlock()

	if len(tasks) == 0 {
		return errors.New("no tasks registered")
	}

	metrics.ComponentHealthSet(internalcommon.ComponentScheduler, true)
	defer metrics.ComponentHealthSet(internalcommon.ComponentScheduler, false)

	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, t)
		}()
	}

	s.log.Infow("scheduler started", "tasks", len(tasks))
	wg.Wait()
	s.log.Info("scheduler stopped")

	return nil
}

func (s *Scheduler) loop(ctx context.Context, t task) {
	ticker := time.NewTicker(t.cfg.Interval.Duration)
	defer ticker.Stop()

	for {
		if _, err := s.run(ctx, t); err != nil {
			s.log.Errorw("task failed", "task", t.name, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce runs the named task a single time, honoring its lock and soft timeout.
// It reports false when the run was skipped because the lock is held.
func (s *Scheduler) RunOnce(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	var found *task
	for i := range s.tasks {
		if s.tasks[i].name == name {
			found = &s.tasks[i]
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return false, fmt.Errorf("unknown task %q", name)
	}
	return s.run(ctx, *found)
}

// Cancel cancels the in-flight runs of the named tasks, or of every task when none is named.
// Cancelled runs stop at their next context check and release their locks.
func (s *Scheduler) Cancel(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, cancel := range s.running {
		if len(names) == 0 || slices.Contains(names, name) {
			s.log.Infow("cancelling running task", "task", name)
			cancel()
		}
	}
}

func (s *Scheduler) run(ctx context.Context, t task) (ran bool, err error) {
	if ctx.Err() != nil {
		return false, nil
	}

	held, err := s.locker.TryLock(ctx, t.name, t.cfg.LockTTL.Duration)
	if errors.Is(err, lock.ErrNotAcquired) {
		s.log.Debugw("task already running, skipping", "task", t.name)
		metrics.TaskRunInc(t.name, OutcomeSkipped)
		return false, nil
	}
	if err != nil {
		metrics.TaskRunInc(t.name, OutcomeError)
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, t.cfg.SoftTimeout.Duration)
	s.track(t.name, cancel)
	start := time.Now()

	defer func() {
		panicked := false
		if r := recover(); r != nil {
			panicked, ran = true, true
			s.log.Errorw("task panicked", "task", t.name, "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("task %s panicked: %v", t.name, r)
		}

		outcome := OutcomeOK
		switch {
		case panicked:
			outcome = OutcomePanic
		case err == nil:
		case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			outcome = OutcomeTimeout
		case runCtx.Err() != nil:
			outcome = OutcomeCancelled
		default:
			outcome = OutcomeError
		}

		if outcome == OutcomeTimeout || outcome == OutcomeCancelled {
			s.log.Warnw("task stopped before completion",
				"task", t.name,
				"outcome", outcome,
				"elapsed", time.Since(start),
				"error", err,
			)
			err = nil
		}

		s.untrack(t.name)
		cancel()

		releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		if releaseErr := held.Release(releaseCtx); releaseErr != nil {
			s.log.Errorw("failed to release task lock", "task", t.name, "error", releaseErr)
		}
		releaseCancel()

		metrics.TaskRunInc(t.name, outcome)
		metrics.TaskDurationLog(t.name, time.Since(start))
	}()

	err = t.fn(runCtx)
	return true, err
}

func (s *Scheduler) track(name string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[name] = cancel
}

func (s *Scheduler) untrack(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}
