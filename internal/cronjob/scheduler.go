package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/logging"
)

const jobTimeout = 30 * time.Second

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string // cron spec with a seconds field, e.g. "0 * * * * *"
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

func NewScheduler(log *logrus.Logger) *Scheduler {
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log,
	}
}

// Add registers a job. A failing run is logged and retried on the next tick.
func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() {
		s.run(job)
	})
	if err != nil {
		return fmt.Errorf("failed to create cron job %s: %w", job.Name, err)
	}
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.log.WithField("jobs", len(s.cron.Entries())).Info("cron scheduler started")
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	logger := logging.FromContext(ctx, s.log).With("job", job.Name)
	if err := job.Run(ctx); err != nil {
		logger.LogError("cron_job", err)
		return
	}
	logger.With("latency", time.Since(start).String()).LogInfo("cron_job", "completed")
}
