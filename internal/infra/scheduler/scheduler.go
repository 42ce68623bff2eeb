package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Job struct {
	Name     string
	Interval time.Duration
	// RunOnStart triggers one run as soon as the scheduler starts.
	RunOnStart bool
	Run        func(ctx context.Context) error
}

type Scheduler struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    []Job
	cancel  context.CancelFunc
	group   *errgroup.Group
	running bool
}

func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a job. Jobs registered after Start are ignored.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.logger.Warn("job registered after start, ignoring", "job", job.Name)
		return
	}
	if job.Interval <= 0 || job.Run == nil {
		s.logger.Warn("job has no interval or run func, ignoring", "job", job.Name)
		return
	}
	s.jobs = append(s.jobs, job)
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	group, groupCtx := errgroup.WithContext(runCtx)
	for _, job := range s.jobs {
		group.Go(func() error {
			s.loop(groupCtx, job)
			return nil
		})
	}

	s.cancel = cancel
	s.group = group
	s.running = true
	s.logger.Info("scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop cancels every job and waits for in-flight runs to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cancel()
	group := s.group
	s.running = false
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	if job.RunOnStart {
		s.runOnce(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.logger.Debug("job started", "job", job.Name)

	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed",
			"job", job.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err.Error())
		return
	}
	s.logger.Debug("job finished", "job", job.Name, "duration_ms", time.Since(start).Milliseconds())
}
