package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"khidmaBack/internal/config"
)

const (
	autoCompleteSchedule = "@every 15m"
	sessionSweepSchedule = "@daily"
	autoCompleteBatch    = 200
	jobTimeout           = 5 * time.Minute
)

// startJobs schedules the background workers. The returned cron must be
// stopped on shutdown.
func (app *application) startJobs(cfg config.Config) (*cron.Cron, error) {
	log := app.logger.WithField("component", "jobs")
	c := cron.New(cron.WithLocation(time.UTC))

	run := func(name string, fn func(ctx context.Context) error) func() {
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			if err := fn(ctx); err != nil {
				log.Errorf("%s: %v", name, err)
			}
		}
	}

	after := time.Duration(cfg.Jobs.AutoCompleteDays) * 24 * time.Hour
	if _, err := c.AddFunc(autoCompleteSchedule, run("auto-complete", func(ctx context.Context) error {
		n, err := app.orderService.AutoComplete(ctx, after, autoCompleteBatch)
		if n > 0 {
			log.Infof("auto-complete: completed %d delivered orders", n)
		}
		return err
	})); err != nil {
		return nil, fmt.Errorf("schedule auto-complete: %w", err)
	}

	if _, err := c.AddFunc(sessionSweepSchedule, run("session sweep", func(ctx context.Context) error {
		n, err := app.sessionRepo.DeleteExpired(ctx)
		if n > 0 {
			log.Infof("session sweep: removed %d expired sessions", n)
		}
		return err
	})); err != nil {
		return nil, fmt.Errorf("schedule session sweep: %w", err)
	}

	if cfg.Jobs.PayoutSchedule != "" {
		if _, err := c.AddFunc(cfg.Jobs.PayoutSchedule, run("payouts", func(ctx context.Context) error {
			res, err := app.payoutService.Process(ctx, nil)
			if err != nil {
				return err
			}
			log.Infof("payouts: %d paid, %d failed, %d skipped", len(res.Paid), len(res.Failed), len(res.Skipped))
			return nil
		})); err != nil {
			return nil, fmt.Errorf("schedule payouts %q: %w", cfg.Jobs.PayoutSchedule, err)
		}
	}

	c.Start()
	return c, nil
}
