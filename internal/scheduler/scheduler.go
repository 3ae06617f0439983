// Package scheduler runs the collect-and-push task at a fixed interval.
// Each tick measures how long the task took and sleeps only the remainder,
// so tick start times keep a constant cadence unless the task overruns.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Task is one collect-and-push cycle.
type Task func(ctx context.Context) error

// Clock abstracts time for the scheduler. Now must carry a monotonic reading
// so elapsed time is immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Scheduler drives a Task at a fixed interval. Ticks never overlap.
type Scheduler struct {
	interval time.Duration
	task     Task
	clock    Clock
	logger   *zap.Logger

	onCycleDone func(elapsed time.Duration, err error)
}

// New creates a Scheduler running task every interval.
func New(interval time.Duration, task Task, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		interval: interval,
		task:     task,
		clock:    realClock{},
		logger:   logger,
	}
}

// OnCycleDone sets a callback invoked after every tick with the task's
// elapsed time and error.
func (s *Scheduler) OnCycleDone(fn func(elapsed time.Duration, err error)) {
	s.onCycleDone = fn
}

// Run ticks until ctx is cancelled. Task failures are logged and never stop
// the loop.
func (s *Scheduler) Run(ctx context.Context) {
	for ctx.Err() == nil {
		wait := s.Tick(ctx)
		if wait > 0 {
			s.clock.Sleep(ctx, wait)
		}
	}
}

// Tick runs the task once and returns how long to wait before the next tick:
// the rest of the interval, or zero if the task used all of it.
func (s *Scheduler) Tick(ctx context.Context) time.Duration {
	start := s.clock.Now()
	err := s.runTask(ctx)
	elapsed := s.clock.Since(start)

	if err != nil {
		s.logger.Error("Cycle failed",
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		s.logger.Debug("Cycle completed", zap.Duration("elapsed", elapsed))
	}

	if s.onCycleDone != nil {
		s.onCycleDone(elapsed, err)
	}

	wait := Remaining(s.interval, elapsed)
	if wait == 0 {
		s.logger.Warn("Cycle overran interval, starting next immediately",
			zap.Duration("elapsed", elapsed),
			zap.Duration("interval", s.interval))
	}
	return wait
}

// runTask converts a panicking task into an error.
func (s *Scheduler) runTask(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()
	return s.task(ctx)
}

// Remaining returns interval-elapsed, or zero when elapsed meets or exceeds
// the interval.
func Remaining(interval, elapsed time.Duration) time.Duration {
	if elapsed >= interval {
		return 0
	}
	return interval - elapsed
}
