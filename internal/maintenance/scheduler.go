// Package maintenance runs the portal's periodic housekeeping jobs, such as
// pruning expired sessions and completing reservations whose date has passed.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of periodic work. Returned errors are logged and do not stop
// the schedule.
type Job func(ctx context.Context) error

var (
	// ErrDuplicateJob is returned when a job name is registered twice.
	ErrDuplicateJob = errors.New("maintenance: duplicate job")
	// ErrUnknownJob is returned by RunNow for unregistered names.
	ErrUnknownJob = errors.New("maintenance: unknown job")
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation evaluates schedules in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithJobTimeout bounds every job run. Zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = d
	}
}

// Scheduler registers named jobs on cron schedules.
type Scheduler struct {
	logger   *slog.Logger
	location *time.Location
	timeout  time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]Job
	entries map[string]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler.
func New(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		logger:   logger.With(slog.String("component", "maintenance")),
		location: time.UTC,
		timeout:  5 * time.Minute,
		jobs:     make(map[string]Job),
		entries:  make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}

	cronLogger := slogAdapter{logger: s.logger}
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Register schedules job under name using a standard five field cron
// expression or a descriptor such as "@every 15m".
func (s *Scheduler) Register(spec, name string, job Job) error {
	if job == nil {
		return fmt.Errorf("maintenance: job %q is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("maintenance: schedule %q for job %s: %w", spec, name, err)
	}
	s.jobs[name] = job
	s.entries[name] = id

	s.logger.Info("job registered", "job", name, "schedule", spec)
	return nil
}

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(name, job)
}

// Next returns the next activation time of the named job. The zero time is
// returned when the scheduler is stopped or the job is unknown.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "jobs", len(s.entries))
}

// Stop prevents new runs and waits for running jobs until ctx is done, at
// which point in-flight jobs see their context cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		s.logger.Info("maintenance scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("maintenance scheduler stop timed out", "error", ctx.Err())
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, job Job) error {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	logger := s.logger.With("job", name)
	started := time.Now()
	if err := job(ctx); err != nil {
		logger.Error("job failed", "error", err, "duration_ms", time.Since(started).Milliseconds())
		return err
	}
	logger.Info("job completed", "duration_ms", time.Since(started).Milliseconds())
	return nil
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
