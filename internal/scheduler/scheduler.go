// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

/*
Package scheduler runs the periodic background maintenance jobs.

One job is registered today: the wage counter reconciliation sweep, which
rewrites denormalized report counters that drifted from the ground truth
and rotates the affected cache surfaces when it corrects anything.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/wdtp/api/internal/core/wage"
)

// Scheduler wraps a cron runner around the maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	wages    *wage.Service
	schedule string
	logger   *slog.Logger
}

/*
New constructs a [Scheduler] firing on the given cron schedule.

Parameters:
  - wages: The wage service whose Reconcile the sweep invokes
  - schedule: Cron expression, e.g. "@every 6h" or "17 3 * * *"
  - logger: Structured logger for job telemetry

Returns:
  - *Scheduler: Configured but not yet started
*/
func New(wages *wage.Service, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		wages:    wages,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the reconciliation job and begins ticking.
// The schedule expression is validated here; a malformed one fails startup.
func (scheduler *Scheduler) Start(context context.Context) error {
	_, err := scheduler.cron.AddFunc(scheduler.schedule, func() {
		scheduler.runReconcile(context)
	})
	if err != nil {
		return fmt.Errorf("scheduler: failed to register reconcile job: %w", err)
	}

	scheduler.cron.Start()
	scheduler.logger.Info("scheduler_started", slog.String("schedule", scheduler.schedule))
	return nil
}

// Stop halts the ticker and waits for an in-flight sweep to finish.
func (scheduler *Scheduler) Stop() {
	stopContext := scheduler.cron.Stop()
	<-stopContext.Done()
	scheduler.logger.Info("scheduler_stopped")
}

// runReconcile executes one counter sweep. Failures are logged, never fatal;
// the next tick retries.
func (scheduler *Scheduler) runReconcile(context context.Context) {
	scheduler.logger.InfoContext(context, "wage_reconcile_sweep_started")

	if err := scheduler.wages.Reconcile(context); err != nil {
		scheduler.logger.ErrorContext(context, "wage_reconcile_sweep_failed", slog.Any("error", err))
		return
	}

	scheduler.logger.InfoContext(context, "wage_reconcile_sweep_finished")
}
