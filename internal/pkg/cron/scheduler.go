package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job. Interval jobs run immediately on start and then
// every Interval; calendar jobs run at the instants returned by Next.
type Job struct {
	Name     string
	Interval time.Duration
	Next     func(now time.Time) time.Time
	Fn       func(ctx context.Context) error

	reset chan struct{}
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs    []*Job
	once    []*Job
	watcher *resumeWatcher
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	now     func() time.Time
}

type resumeWatcher struct {
	name  string
	check time.Duration
	delay time.Duration
	fn    func(ctx context.Context) error
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]*Job, 0),
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// AddJob adds an interval job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
		reset:    make(chan struct{}, 1),
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// AddScheduledJob adds a job that fires at next(now), then re-arms from the new now.
func (s *Scheduler) AddScheduledJob(name string, next func(now time.Time) time.Time, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, &Job{
		Name:  name,
		Next:  next,
		Fn:    fn,
		reset: make(chan struct{}, 1),
	})
	slog.Info("Cron job registered", "name", name, "next_run", next(s.now()))
}

// AddStartupJob adds a job that runs once when the scheduler starts.
func (s *Scheduler) AddStartupJob(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.once = append(s.once, &Job{Name: name, Fn: fn})
	slog.Info("Cron job registered", "name", name, "interval", "once")
}

// OnResume registers fn to run delay after a system resume is detected. Resume is
// detected when the wall clock advances noticeably more than the check interval
// between two ticks. All calendar jobs are re-armed on resume as well.
func (s *Scheduler) OnResume(name string, check, delay time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watcher = &resumeWatcher{name: name, check: check, delay: delay, fn: fn}
	slog.Info("Cron resume watcher registered", "name", name, "check_interval", check)
}

// Reset restarts the timer of the named job. It reports whether the job exists.
func (s *Scheduler) Reset(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.Name == name {
			job.signalReset()
			return true
		}
	}
	return false
}

func (j *Job) signalReset() {
	select {
	case j.reset <- struct{}{}:
	default:
	}
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.once {
		s.wg.Add(1)
		go func(job *Job) {
			defer s.wg.Done()
			s.executeJob(job)
		}(job)
	}

	for _, job := range s.jobs {
		s.wg.Add(1)
		if job.Next != nil {
			go s.runScheduledJob(job)
		} else {
			go s.runJob(job)
		}
	}

	if s.watcher != nil {
		s.wg.Add(1)
		go s.runResumeWatcher(s.watcher)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs)+len(s.once))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runJob runs a single interval job on its schedule
func (s *Scheduler) runJob(job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-job.reset:
			ticker.Reset(job.Interval)
			slog.Debug("Cron job interval restarted", "name", job.Name)
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// runScheduledJob runs a calendar job, re-arming after every run or reset
func (s *Scheduler) runScheduledJob(job *Job) {
	defer s.wg.Done()

	for {
		now := s.now()
		at := job.Next(now)
		timer := time.NewTimer(at.Sub(now))
		slog.Debug("Cron job armed", "name", job.Name, "next_run", at)

		select {
		case <-s.ctx.Done():
			timer.Stop()
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-job.reset:
			timer.Stop()
		case <-timer.C:
			s.executeJob(job)
		}
	}
}

func (s *Scheduler) runResumeWatcher(w *resumeWatcher) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.check)
	defer ticker.Stop()

	// Round(0) strips the monotonic reading so sleep time is visible.
	last := s.now().Round(0)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := s.now().Round(0)
			resumed := resumedBetween(last, now, w.check)
			gap := now.Sub(last)
			last = now
			if !resumed {
				continue
			}
			slog.Info("System resume detected", "name", w.name, "gap", gap)
			s.rearmScheduled()

			select {
			case <-s.ctx.Done():
				return
			case <-time.After(w.delay):
			}
			s.executeJob(&Job{Name: w.name, Fn: w.fn})
		}
	}
}

func (s *Scheduler) rearmScheduled() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.Next != nil {
			job.signalReset()
		}
	}
}

// resumedBetween reports whether the wall clock moved more than twice the tick
// interval between two ticks, which only happens when the process was suspended.
func resumedBetween(prev, now time.Time, interval time.Duration) bool {
	return now.Sub(prev) > 2*interval
}

// NextMidnight returns the next local midnight after now, plus buffer.
func NextMidnight(buffer time.Duration) func(now time.Time) time.Time {
	return func(now time.Time) time.Time {
		y, m, d := now.Date()
		return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Add(buffer)
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job *Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := append(append([]*Job{}, s.once...), s.jobs...)
	for _, job := range all {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
