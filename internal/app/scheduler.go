/**
 * @description
 * Cron scheduler setup. A single external time-based trigger fires the daily
 * tick once per UTC day; the engine performs no background threading of its
 * own. The design assumes one scheduler instance per deployment — there is no
 * lease guarding the tick, and running replicas concurrently risks
 * double-sent reminders and double-appended payment records.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/smartysub/tracker-service/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the daily tick and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.DailyTickSchedule, s.jobs.RunDailyTick); err != nil {
		s.logger.Error("failed to schedule daily tick", "error", err)
	} else {
		s.logger.Info("scheduled daily tick", "schedule", s.config.DailyTickSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
