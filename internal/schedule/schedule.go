// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs named jobs on fixed intervals and exposes
// their state for the CLI and the web dashboard.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status is a job's run state. Jobs are either waiting for their next
// tick or running; there is no other state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)

// JobFunc is the work a job performs.
type JobFunc func(ctx context.Context) error

// Job describes a scheduled task.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          JobFunc
}

// JobState is a point-in-time snapshot of one job.
type JobState struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Interval    string    `json:"interval"`
	Status      Status    `json:"status"`
	LastRun     time.Time `json:"last_run,omitzero"`
	NextRun     time.Time `json:"next_run,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
}

type jobEntry struct {
	job Job

	mu        sync.Mutex
	status    Status
	lastRun   time.Time
	nextRun   time.Time
	lastError string
}

// Scheduler owns a set of jobs. Register jobs before calling Start.
type Scheduler struct {
	mu     sync.Mutex
	jobs   map[string]*jobEntry
	order  []string
	logger *zap.Logger
}

// New builds an empty Scheduler. A nil logger disables logging.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobs:   make(map[string]*jobEntry),
		logger: logger.Named("schedule"),
	}
}

// Register adds a job. Registering a duplicate name is an error.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Fn == nil || job.Interval <= 0 {
		return fmt.Errorf("job needs a name, a function, and a positive interval")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	s.jobs[job.Name] = &jobEntry{job: job, status: StatusIdle}
	s.order = append(s.order, job.Name)
	return nil
}

// Start launches one loop per registered job and blocks until ctx is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	entries := make([]*jobEntry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, s.jobs[name])
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(e *jobEntry) {
			defer wg.Done()
			s.runLoop(ctx, e)
		}(e)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, e *jobEntry) {
	e.mu.Lock()
	e.nextRun = time.Now().Add(e.job.Interval)
	e.mu.Unlock()

	for {
		e.mu.Lock()
		wait := time.Until(e.nextRun)
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		// A manual run may have pushed nextRun back while the timer
		// was armed; re-arm instead of running early.
		e.mu.Lock()
		deferred := time.Now().Before(e.nextRun)
		e.mu.Unlock()
		if deferred {
			continue
		}

		if err := s.runJob(ctx, e); err != nil {
			s.logger.Warn("job failed",
				zap.String("job", e.job.Name), zap.Error(err))
		}
	}
}

// Run executes a job by name synchronously, outside its timer. The
// next scheduled run is pushed back a full interval. A job that is
// already running is not re-entered.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.runJob(ctx, e)
}

func (s *Scheduler) runJob(ctx context.Context, e *jobEntry) error {
	e.mu.Lock()
	if e.status == StatusRunning {
		e.mu.Unlock()
		return fmt.Errorf("job %q is already running", e.job.Name)
	}
	e.status = StatusRunning
	e.mu.Unlock()

	s.logger.Info("job started", zap.String("job", e.job.Name))
	err := e.job.Fn(ctx)

	e.mu.Lock()
	e.status = StatusIdle
	e.lastRun = time.Now()
	e.nextRun = e.lastRun.Add(e.job.Interval)
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
	e.mu.Unlock()

	if err != nil {
		return err
	}
	s.logger.Info("job finished", zap.String("job", e.job.Name))
	return nil
}

// Snapshot returns the state of every job in registration order.
func (s *Scheduler) Snapshot() []JobState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobState, 0, len(s.order))
	for _, name := range s.order {
		e := s.jobs[name]
		e.mu.Lock()
		out = append(out, JobState{
			Name:        e.job.Name,
			Description: e.job.Description,
			Interval:    e.job.Interval.String(),
			Status:      e.status,
			LastRun:     e.lastRun,
			NextRun:     e.nextRun,
			LastError:   e.lastError,
		})
		e.mu.Unlock()
	}
	return out
}
