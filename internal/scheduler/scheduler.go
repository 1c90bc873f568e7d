// Package scheduler runs the periodic housekeeping tasks of the server.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/logging"
)

// DefaultResolution is how often Run checks for due tasks.
const DefaultResolution = time.Second

// TaskFunc is a function that performs a scheduled task.
// It receives a context that is cancelled when the scheduler stops.
type TaskFunc func(ctx context.Context) error

// Task is a job repeated at a fixed interval.
type Task struct {
	ID         string
	Name       string
	Every      time.Duration
	Func       TaskFunc
	RunOnStart bool
	Timeout    time.Duration
}

// TaskStatus is the run history of a task.
type TaskStatus struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	LastRun      time.Time     `json:"last_run,omitempty"`
	LastDuration time.Duration `json:"last_duration,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	NextRun      time.Time     `json:"next_run"`
	RunCount     int64         `json:"run_count"`
	ErrorCount   int64         `json:"error_count"`
}

// Scheduler runs tasks one at a time on a single goroutine.
type Scheduler struct {
	mu         sync.Mutex
	tasks      map[string]*entry
	clock      clock.Clock
	logger     *logging.Logger
	resolution time.Duration
}

type entry struct {
	task   Task
	status TaskStatus
}

// New creates a scheduler.
func New(clk clock.Clock, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.WithComponent("scheduler")
	}
	return &Scheduler{
		tasks:      make(map[string]*entry),
		clock:      clock.OrDefault(clk),
		logger:     logger,
		resolution: DefaultResolution,
	}
}

// AddTask registers a task. Its first run is one interval from now.
func (s *Scheduler) AddTask(task Task) error {
	switch {
	case task.ID == "":
		return errors.New("task ID is required")
	case task.Every <= 0:
		return fmt.Errorf("task %s: interval must be positive", task.ID)
	case task.Func == nil:
		return fmt.Errorf("task %s: function is required", task.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	if task.Name == "" {
		task.Name = task.ID
	}
	s.tasks[task.ID] = &entry{
		task:   task,
		status: TaskStatus{ID: task.ID, Name: task.Name, NextRun: s.clock.Now().Add(task.Every)},
	}
	s.logger.Debug("task added", "id", task.ID, "every", task.Every)
	return nil
}

// Status returns the status of all tasks, ordered by name.
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(s.tasks))
	for _, e := range s.tasks {
		statuses = append(statuses, e.status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// Run executes RunOnStart tasks, then due tasks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for _, e := range s.snapshot() {
		if e.task.RunOnStart {
			s.execute(ctx, e)
		}
	}

	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue executes every task whose next run is not after the current time
// and returns how many ran.
func (s *Scheduler) RunDue(ctx context.Context) int {
	now := s.clock.Now()
	ran := 0
	for _, e := range s.snapshot() {
		s.mu.Lock()
		due := !e.status.NextRun.After(now)
		s.mu.Unlock()
		if due && ctx.Err() == nil {
			s.execute(ctx, e)
			ran++
		}
	}
	return ran
}

func (s *Scheduler) snapshot() []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]*entry, 0, len(s.tasks))
	for _, e := range s.tasks {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].task.ID < entries[j].task.ID })
	return entries
}

func (s *Scheduler) execute(ctx context.Context, e *entry) {
	task := e.task
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	start := s.clock.Now()
	err := task.Func(ctx)
	duration := s.clock.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.status.LastRun = start
	e.status.LastDuration = duration
	e.status.RunCount++
	e.status.NextRun = s.clock.Now().Add(task.Every)
	if err != nil {
		e.status.LastError = err.Error()
		e.status.ErrorCount++
		s.logger.Warn("task failed", "id", task.ID, "error", err, "duration", duration)
		return
	}
	e.status.LastError = ""
	s.logger.Debug("task completed", "id", task.ID, "duration", duration)
}
