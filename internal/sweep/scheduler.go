package sweep

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a single maintenance pass over the registry.
type Job interface {
	RunOnce(ctx context.Context)
}

// Scheduler drives sweep jobs on cron schedules. Jobs run until Stop; each
// fires independently so a slow SLA scan cannot delay the auto-close pass.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Register adds a job on the given cron schedule (standard 5-field
// expressions or @every forms).
func (s *Scheduler) Register(name, schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		job.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("register sweep %s: invalid schedule %q: %w", name, schedule, err)
	}
	s.logger.Info("sweep registered", zap.String("sweep", name), zap.String("schedule", schedule))
	return nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
