package store

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"propscout/internal/config"
	"propscout/internal/logging"
)

// Janitor runs the periodic retention sweep over finished jobs.
type Janitor struct {
	cron     *cron.Cron
	jobs     *JobStore
	maxAge   time.Duration
	schedule string
	logger   logging.Logger
}

// NewJanitor creates the retention janitor from the configured schedule.
func NewJanitor(cfg *config.Config, jobs *JobStore) *Janitor {
	return &Janitor{
		cron:     cron.New(),
		jobs:     jobs,
		maxAge:   cfg.Retention.JobLogAge,
		schedule: cfg.Retention.SweepSchedule,
		logger:   logging.GetGlobalLogger().WithField("component", "janitor"),
	}
}

// Start registers the sweep and starts the scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("Retention janitor started", map[string]interface{}{
		"schedule": j.schedule,
		"max_age":  j.maxAge.String(),
	})
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.jobs.SweepExpired(ctx, j.maxAge)
	if err != nil {
		j.logger.Error("Retention sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if removed > 0 {
		j.logger.Info("Retention sweep completed", map[string]interface{}{"removed": removed})
	}
}
