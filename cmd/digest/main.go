package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wenyunvip/ai-daily-digest/internal/app"
	"github.com/wenyunvip/ai-daily-digest/internal/cache"
	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/pipeline"
)

var (
	flagHours   int
	flagTop     int
	flagOutput  string
	flagFull    bool
	flagNoCache bool
)

func main() {
	root := &cobra.Command{
		Use:           "digest",
		Short:         "AI-curated daily digest of top technology blogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().IntVar(&flagHours, "hours", 0, "recency window in hours (default from config)")
	root.PersistentFlags().IntVar(&flagTop, "top", 0, "number of featured articles (default from config)")
	root.PersistentFlags().StringVar(&flagOutput, "output", "", "output directory for rendered digests")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one digest cycle now",
		RunE:  runOnce,
	}
	runCmd.Flags().BoolVar(&flagFull, "full", false, "ignore the incremental cache and reprocess every in-window article")
	runCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "like --full, but also skip recording processed articles")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run digests on the configured cron schedule until interrupted",
		RunE:  runSchedule,
	}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop cache entries older than the retention horizon",
		RunE:  runPrune,
	}

	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "List the configured feed sources",
		RunE:  runSources,
	}

	root.AddCommand(runCmd, scheduleCmd, pruneCmd, sourcesCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	cfg := config.Load()
	if flagHours > 0 {
		cfg.Pipeline.Window = time.Duration(flagHours) * time.Hour
	}
	if flagTop > 0 {
		cfg.Pipeline.TopN = flagTop
	}
	if flagOutput != "" {
		cfg.Output.Dir = flagOutput
	}
	return cfg
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Run(ctx, pipeline.Options{Full: flagFull, NoCache: flagNoCache})
	if err != nil {
		if errors.Is(err, cache.ErrLeaseHeld) {
			return errors.New("another digest run is already in progress")
		}
		return err
	}

	fmt.Printf("sources: %d attempted, %d failed\n", report.SourcesAttempted, len(report.SourcesFailed))
	fmt.Printf("articles: %d fetched, %d in window, %d scored (%d failures)\n",
		report.ArticlesFetched, report.ArticlesFiltered, report.ArticlesScored, report.ScoringFailures)
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := app.New(loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Schedule(ctx, pipeline.Options{})
}

func runPrune(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg := loadConfig()
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	horizon := cfg.Cache.Retention
	if floor := 2 * cfg.Pipeline.Window; horizon < floor {
		horizon = floor
	}
	pruned, err := store.Prune(ctx, horizon)
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d cache entries older than %s\n", pruned, horizon)
	return nil
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	for _, src := range cfg.FeedSources() {
		fmt.Printf("%-40s %s\n", src.Name, src.URL)
	}
	return nil
}
