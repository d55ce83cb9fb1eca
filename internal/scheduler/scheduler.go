package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a periodic background task. Run gets a context bounded by the
// scheduler's job timeout.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs reload and cleanup jobs on fixed intervals. A failed run
// is logged and retried at the next tick; jobs never overlap themselves.
type Scheduler struct {
	cron    *gocron.Scheduler
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron,
		logger:  logger.With("component", "scheduler"),
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers a job. Jobs with a non-positive interval are skipped so a
// zero config value disables them. The first run happens one interval
// after Start.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("scheduler: job needs a name and a run func")
	}
	if job.Interval <= 0 {
		s.logger.Info("job disabled", "job", job.Name)
		return nil
	}

	_, err := s.cron.Every(job.Interval).
		Tag(job.Name).
		WaitForSchedule().
		Do(s.execute, job)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name, err)
	}
	return nil
}

// Start runs the jobs in the background until Stop or until ctx is done
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.StartAsync()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Jobs()))

	go func() {
		<-s.context().Done()
		s.cron.Stop()
	}()
}

// RunNow triggers the named job outside its schedule
func (s *Scheduler) RunNow(name string) error {
	if err := s.cron.RunByTag(name); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

// Stop cancels running jobs and halts the schedule
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(s.context(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("job failed",
			"job", job.Name,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	s.logger.Debug("job completed", "job", job.Name, "duration", time.Since(start))
}
