// Package scheduler triggers periodic ingestion runs through the job
// executor, so scheduled and manually triggered runs share one queue.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openfiling/disclosure-cli/internal/ingest"
	"github.com/openfiling/disclosure-cli/internal/jobs"
)

// Scheduler enqueues an ingestion job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	exec   *jobs.Executor
	runner *ingest.Runner
	log    *zap.Logger
}

// New builds a Scheduler for the given cron expression (standard 5-field
// syntax, e.g. "15 3 * * *").
func New(exec *jobs.Executor, runner *ingest.Runner, schedule string) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		exec:   exec,
		runner: runner,
		log:    zap.L().With(zap.String("component", "scheduler")),
	}
	if _, err := s.cron.AddFunc(schedule, s.trigger); err != nil {
		return nil, eris.Wrapf(err, "scheduler: invalid schedule %q", schedule)
	}
	return s, nil
}

// Start begins firing on schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts scheduling and waits for a mid-flight trigger, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (s *Scheduler) trigger() {
	job, err := s.exec.Enqueue("scheduled-ingest", func(ctx context.Context) (any, error) {
		return s.runner.Run(ctx, 0)
	})
	if err != nil {
		s.log.Error("enqueue scheduled ingest", zap.Error(err))
		return
	}
	s.log.Info("scheduled ingest enqueued", zap.String("job_id", job.ID))
}
