package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// Cron triggers recurring digest runs from a standard 5-field cron
// expression, evaluated in the configured timezone. Runs are serialized:
// a tick that fires while the previous job is still running is skipped.
type Cron struct {
	expression string
	location   *time.Location
	logger     *slog.Logger

	runner  *cron.Cron
	running chan struct{}
}

var _ ports.Scheduler = (*Cron)(nil)

func NewCron(cfg config.SchedulerConfig, logger *slog.Logger) *Cron {
	return &Cron{
		expression: cfg.CronExpression,
		location:   cfg.Location(),
		logger:     logger,
		running:    make(chan struct{}, 1),
	}
}

func (c *Cron) Start(ctx context.Context, job func(time.Time)) error {
	runner := cron.New(cron.WithLocation(c.location))

	_, err := runner.AddFunc(c.expression, func() {
		select {
		case c.running <- struct{}{}:
		default:
			c.warn("previous run still active, skipping tick")
			return
		}
		defer func() { <-c.running }()

		if ctx.Err() != nil {
			return
		}
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.expression, err)
	}

	c.runner = runner
	runner.Start()
	if c.logger != nil {
		c.logger.Info("scheduler started", "cron", c.expression, "timezone", c.location.String())
	}
	return nil
}

// Stop halts new ticks and waits for an in-flight job, honoring the
// context deadline.
func (c *Cron) Stop(ctx context.Context) error {
	if c.runner == nil {
		return nil
	}
	stopCtx := c.runner.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cron) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
