package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
)

func TestStartRejectsBadExpression(t *testing.T) {
	t.Parallel()

	c := NewCron(config.SchedulerConfig{CronExpression: "not a cron line"}, nil)
	if err := c.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for invalid expression")
	}
}

func TestStartAndStop(t *testing.T) {
	t.Parallel()

	c := NewCron(config.SchedulerConfig{CronExpression: "0 9 * * *", Timezone: "UTC"}, nil)
	if err := c.Start(context.Background(), func(time.Time) {}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	c := NewCron(config.SchedulerConfig{CronExpression: "0 9 * * *"}, nil)
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start: %v", err)
	}
}
