package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is the work run on every tick. The context is canceled when the
// scheduler stops.
type Task func(ctx context.Context) error

// TaskInfo describes a scheduled task.
type TaskInfo struct {
	Name       string
	Expression string
	Next       time.Time // zero until the scheduler is started
	Prev       time.Time // zero until the first run
}

type job struct {
	name       string
	expression string
	entryID    cron.EntryID
}

// Scheduler owns a cron runner and the named jobs registered on it.
type Scheduler struct {
	cron   *cron.Cron
	parser cron.ScheduleParser
	logger *slog.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	order   []string
	runCtx  context.Context
	cancel  context.CancelFunc
	running bool
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	parser   cron.ScheduleParser
	location *time.Location
	logger   *slog.Logger
}

// WithParser sets the schedule parser.
// Default accepts standard five-field expressions and descriptors.
func WithParser(parser cron.ScheduleParser) Option {
	return func(o *options) {
		o.parser = parser
	}
}

// WithLocation sets the time zone schedules are interpreted in.
// Default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a stopped scheduler.
func New(opts ...Option) *Scheduler {
	o := &options{
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		location: time.Local,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	logger := o.logger.With("component", "scheduler")
	cronLogger := &cronLoggerAdapter{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(o.parser),
			cron.WithLocation(o.location),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		parser: o.parser,
		logger: logger,
		jobs:   make(map[string]*job),
		runCtx: ctx,
		cancel: cancel,
	}
}

// ScheduleTask registers task under name to run on cronExpression.
func (s *Scheduler) ScheduleTask(name, cronExpression string, task Task) error {
	if task == nil {
		return ErrTaskRequired
	}

	schedule, err := s.parser.Parse(cronExpression)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidCronExpression, cronExpression, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %q", ErrJobExists, name)
	}

	entryID := s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.runTask(name, task)
	}))
	s.jobs[name] = &job{
		name:       name,
		expression: cronExpression,
		entryID:    entryID,
	}
	s.order = append(s.order, name)

	s.logger.Info("scheduled task", "name", name, "cron", cronExpression)
	return nil
}

// runTask executes one tick. Errors and panics are logged only.
func (s *Scheduler) runTask(name string, task Task) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	logger := s.logger.With("name", name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
		}
	}()

	logger.Info("executing scheduled task")
	if err := task(ctx); err != nil {
		logger.Error("task failed", "err", err, "elapsed", time.Since(start))
		return
	}
	logger.Info("task completed", "elapsed", time.Since(start))
}

// CancelTask removes a task. A run already in progress is not interrupted.
func (s *Scheduler) CancelTask(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}

	s.cron.Remove(j.entryID)
	delete(s.jobs, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })

	s.logger.Info("canceled task", "name", name)
	return nil
}

// ListTasks returns the names of scheduled tasks in registration order.
func (s *Scheduler) ListTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.order)
}

// Tasks describes every scheduled task in registration order.
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]TaskInfo, 0, len(s.order))
	for _, name := range s.order {
		j := s.jobs[name]
		entry := s.cron.Entry(j.entryID)
		infos = append(infos, TaskInfo{
			Name:       j.name,
			Expression: j.expression,
			Next:       entry.Next,
			Prev:       entry.Prev,
		})
	}
	return infos
}

// Start begins running scheduled tasks in the background.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	if s.runCtx.Err() != nil {
		s.runCtx, s.cancel = context.WithCancel(context.Background())
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", "tasks", len(s.order))
}

// Stop stops triggering new runs and waits for in-flight runs to finish or
// for ctx to expire. The task context is canceled before Stop returns.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	defer cancel()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out waiting for running tasks")
		return ctx.Err()
	}
}
