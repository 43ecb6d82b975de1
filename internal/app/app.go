package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/cache"
	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/export"
	"github.com/wenyunvip/ai-daily-digest/internal/fetch"
	"github.com/wenyunvip/ai-daily-digest/internal/logging"
	"github.com/wenyunvip/ai-daily-digest/internal/oracle"
	"github.com/wenyunvip/ai-daily-digest/internal/pipeline"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
	"github.com/wenyunvip/ai-daily-digest/internal/render"
	"github.com/wenyunvip/ai-daily-digest/internal/schedule"
)

const leaseTTL = 30 * time.Minute

// App wires configuration into the concrete pipeline, renderer and
// exporters and owns their lifecycle.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *cache.Store
	pipeline  *pipeline.Pipeline
	renderer  ports.Renderer
	exporters []ports.Exporter
	scheduler ports.Scheduler
	owner     string
}

// New builds a fully wired application from configuration.
func New(cfg config.Config) (*App, error) {
	logger := logging.New(cfg.Logging.Level)

	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	var httpClient *http.Client
	if cfg.Fetch.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Fetch.Timeout}
	}
	fetcher := fetch.New(httpClient, cfg.Fetch.Concurrency, logger)
	client := oracle.NewClient(cfg.Oracle, logger)
	dispatcher := pipeline.NewDispatcher(client, pipeline.DispatchConfig{
		BatchSize:   cfg.Oracle.BatchSize,
		MaxAttempts: cfg.Oracle.MaxAttempts,
		Parallelism: cfg.Oracle.Parallelism,
	}, logger)

	exporters := []ports.Exporter{export.NewFile(cfg.Output.Dir, logger)}
	if cfg.Email.Enabled {
		exporters = append(exporters, export.NewEmail(cfg.Email, logger))
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "local"
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		pipeline:  pipeline.New(cfg.FeedSources(), fetcher, store, dispatcher, logger),
		renderer:  render.NewMarkdown(),
		exporters: exporters,
		scheduler: schedule.NewCron(cfg.Scheduler, logger),
		owner:     fmt.Sprintf("%s/%d", hostname, os.Getpid()),
	}, nil
}

func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) Close() error { return a.store.Close() }

// Run executes one digest run under the cache lease, renders the result
// and hands it to every exporter. A run that produced no new articles
// skips export.
func (a *App) Run(ctx context.Context, opts pipeline.Options) (domain.RunReport, error) {
	if opts.Window <= 0 {
		opts.Window = a.cfg.Pipeline.Window
	}
	if opts.TopN <= 0 {
		opts.TopN = a.cfg.Pipeline.TopN
	}

	if err := a.store.AcquireLease(ctx, a.owner, leaseTTL); err != nil {
		return domain.RunReport{}, err
	}
	defer func() {
		if err := a.store.ReleaseLease(context.WithoutCancel(ctx), a.owner); err != nil {
			a.logger.Warn("release lease", "error", err)
		}
	}()

	digest, report, err := a.pipeline.Run(ctx, opts)
	if err != nil {
		return report, err
	}

	if pruned, err := a.store.Prune(ctx, a.pruneHorizon(opts.Window)); err != nil {
		a.logger.Warn("cache prune", "error", err)
	} else if pruned > 0 {
		a.logger.Info("cache pruned", "entries", pruned)
	}

	if len(digest.Top) == 0 && len(digest.Rest) == 0 {
		a.logger.Info("no new articles, nothing to export")
		return report, nil
	}

	doc := a.renderer.Render(digest, report)
	for _, exp := range a.exporters {
		if err := exp.Export(ctx, doc); err != nil {
			a.logger.Error("export failed", "exporter", exp.Name(), "error", err)
			continue
		}
		a.logger.Info("export done", "exporter", exp.Name())
	}
	return report, nil
}

// pruneHorizon keeps entries for the configured retention, floored at
// twice the window so a pruned entry can never re-enter as fresh.
func (a *App) pruneHorizon(window time.Duration) time.Duration {
	horizon := a.cfg.Cache.Retention
	if floor := 2 * window; horizon < floor {
		horizon = floor
	}
	return horizon
}

// Schedule runs the pipeline on the configured cron expression until ctx
// is cancelled.
func (a *App) Schedule(ctx context.Context, opts pipeline.Options) error {
	err := a.scheduler.Start(ctx, func(at time.Time) {
		a.logger.Info("scheduled run starting", "at", at.Format(time.RFC3339))
		if _, err := a.Run(ctx, opts); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}
