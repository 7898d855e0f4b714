package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"roomcontrol/backend/services/control-service/internal/models"
)

// Default cadence of the control loop.
const (
	DefaultInterval     = 60 * time.Second
	DefaultCycleTimeout = 45 * time.Second
)

// CycleRunner runs one control cycle.
type CycleRunner interface {
	RunOnce(ctx context.Context) (models.CycleReport, error)
}

// Scheduler triggers a cycle at startup and then on every tick. At most one cycle runs at
// a time; ticks that arrive while a cycle is running are skipped.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	timeout  time.Duration
	state    *StateTracker
	logger   *zap.Logger

	running atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler builds a scheduler. state may be nil.
func NewScheduler(runner CycleRunner, interval, timeout time.Duration, state *StateTracker, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultCycleTimeout
	}
	if state == nil {
		state = NewStateTracker()
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		timeout:  timeout,
		state:    state,
		logger:   logger,
	}
}

// State exposes the tracker updated by the scheduler.
func (s *Scheduler) State() *StateTracker {
	return s.state
}

// Run blocks until ctx is cancelled, then waits for the in-flight cycle to return.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("control scheduler started", zap.Duration("interval", s.interval))
	s.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.logger.Info("control scheduler stopped")
			return
		case <-ticker.C:
			s.trigger(ctx)
		}
	}
}

func (s *Scheduler) trigger(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		s.state.skipped()
		s.logger.Warn("previous cycle still running, skipping tick")
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		_, _ = s.RunCycle(ctx)
	}()
	return true
}

// RunCycle runs one cycle bounded by the cycle timeout. Errors and panics are logged and
// returned, never propagated further.
func (s *Scheduler) RunCycle(ctx context.Context) (report models.CycleReport, err error) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.state.started()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
		s.state.finished(report, err)
		if err != nil {
			s.logger.Error("control cycle failed", zap.String("cycle_id", report.ID), zap.Error(err))
		}
	}()

	return s.runner.RunOnce(cycleCtx)
}
