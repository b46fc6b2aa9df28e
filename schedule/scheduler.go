// Package schedule provides the cron-backed implementation of the
// core.Scheduler collaborator. Specs may be standard cron expressions
// ("*/5 * * * *", "@hourly") or plain durations ("30s", "5m"), the latter
// running at a fixed interval.
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hupe1980/pluginmesh/core"
	"github.com/hupe1980/pluginmesh/logging"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives task-level diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// CronScheduler implements core.Scheduler on top of robfig/cron. Public
// methods are safe for concurrent use. Tasks only fire between Start and
// Stop.
type CronScheduler struct {
	cron    *cron.Cron
	logger  logging.Logger
	mu      sync.Mutex
	entries map[core.TaskHandle]cron.EntryID
	started bool
}

// New constructs a CronScheduler with optional overrides.
func New(optFns ...func(o *Options)) *CronScheduler {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CronScheduler{
		cron:    cron.New(),
		logger:  opts.Logger,
		entries: make(map[core.TaskHandle]cron.EntryID),
	}
}

// WithLogger overrides the scheduler's logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Start begins firing scheduled tasks. Calling Start on a running scheduler
// is a no-op.
func (s *CronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts task firing and waits for in-flight tasks to complete.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
}

// Schedule registers task under the given spec and returns a handle for
// cancellation. Invalid specs fail synchronously.
func (s *CronScheduler) Schedule(spec string, task func()) (core.TaskHandle, error) {
	sched, err := parseSpec(spec)
	if err != nil {
		return "", fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}

	handle := core.TaskHandle(core.NewID())
	logger := s.logger

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[handle] = s.cron.Schedule(sched, cron.FuncJob(func() {
		start := time.Now()
		task()
		logger.Debug("scheduled task fired", "handle", string(handle), "duration", time.Since(start))
	}))
	return handle, nil
}

// Cancel stops the task identified by handle. Unknown handles are a no-op.
func (s *CronScheduler) Cancel(handle core.TaskHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[handle]
	if !ok {
		return nil
	}
	s.cron.Remove(id)
	delete(s.entries, handle)
	return nil
}

// Len returns the number of live task registrations.
func (s *CronScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// parseSpec accepts a cron expression or a plain duration string.
func parseSpec(spec string) (cron.Schedule, error) {
	if sched, err := cron.ParseStandard(spec); err == nil {
		return sched, nil
	}
	d, err := time.ParseDuration(spec)
	if err != nil {
		return nil, fmt.Errorf("neither cron expression nor duration")
	}
	if d <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	return cron.Every(d), nil
}
