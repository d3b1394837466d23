package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/clock"
)

// Job is a unit of scheduled work. A job with a daily hour set runs at most once per calendar
// day, on the first tick at or after that hour.
type Job struct {
	Name     string
	Interval time.Duration
	DailyAt  *int
	Fn       func(ctx context.Context) error

	lastRun time.Time
}

// Scheduler runs registered jobs on their intervals until stopped.
type Scheduler struct {
	clock  clock.Clock
	jobs   []*Job
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler(clk clock.Clock) *Scheduler {
	return &Scheduler{clock: clk}
}

// AddJob registers a job that runs every interval.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.add(&Job{Name: name, Interval: interval, Fn: fn})
}

// AddDailyJob registers a job checked every interval that runs once a day from hour onwards.
func (s *Scheduler) AddDailyJob(name string, interval time.Duration, hour int, fn func(ctx context.Context) error) {
	s.add(&Job{Name: name, Interval: interval, DailyAt: &hour, Fn: fn})
}

func (s *Scheduler) add(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", job.Name, "interval", job.Interval, "daily_at", job.DailyAt)
}

// Start runs every job in its own goroutine until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	s.tick(ctx, job)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.tick(ctx, job)
		}
	}
}

// tick executes job if it is due. Only the job's own goroutine touches lastRun.
func (s *Scheduler) tick(ctx context.Context, job *Job) {
	now := s.clock.Now()
	if !job.due(now) {
		return
	}
	job.lastRun = now
	s.executeJob(ctx, job)
}

func (j *Job) due(now time.Time) bool {
	if j.DailyAt == nil {
		return true
	}
	if now.Hour() < *j.DailyAt {
		return false
	}
	return j.lastRun.IsZero() || clock.DateOf(j.lastRun).Before(clock.DateOf(now))
}

func (s *Scheduler) executeJob(ctx context.Context, job *Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once regardless of their schedule.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.executeJob(ctx, job)
	}
}
