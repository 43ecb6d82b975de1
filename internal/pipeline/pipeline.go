package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/feeds"
	"github.com/wenyunvip/ai-daily-digest/internal/fetch"
	"github.com/wenyunvip/ai-daily-digest/internal/parser"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// Stage names the phase a run is in; the report logger and tests read it.
type Stage string

const (
	StageInit        Stage = "init"
	StageFetching    Stage = "fetching"
	StageFiltering   Stage = "filtering"
	StageDiffing     Stage = "diffing"
	StageScoring     Stage = "scoring"
	StageRanking     Stage = "ranking"
	StageSummarizing Stage = "summarizing"
	StageTrending    Stage = "trending"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// Options tune one run. Zero values take the configured defaults.
type Options struct {
	Window time.Duration
	TopN   int
	// Full disables the incremental diff so every in-window article is
	// reprocessed regardless of the cache.
	Full bool
	// NoCache additionally skips the end-of-run commit, leaving the cache
	// untouched by this run.
	NoCache bool
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Pipeline drives one digest run end to end: fetch, parse, filter, diff,
// score, rank, summarize, trend, commit. Degraded inputs (failed feeds,
// dropped batches) are recorded and survived; only a total source
// failure, a cache fault or a fully failed scoring stage abort the run.
type Pipeline struct {
	sources    []feeds.Source
	fetcher    *fetch.Fetcher
	store      ports.SeenStore
	dispatcher *Dispatcher
	logger     *slog.Logger

	stage Stage
}

func New(sources []feeds.Source, fetcher *fetch.Fetcher, store ports.SeenStore, dispatcher *Dispatcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		sources:    sources,
		fetcher:    fetcher,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		stage:      StageInit,
	}
}

// Stage reports the phase the last (or current) run reached.
func (p *Pipeline) Stage() Stage { return p.stage }

// Run executes one digest run and returns the finished digest along with
// the run report. The report is valid even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, opts Options) (domain.Digest, domain.RunReport, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	window := opts.Window
	if window <= 0 {
		window = 48 * time.Hour
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 15
	}

	started := now().UTC()
	report := domain.RunReport{
		SourcesAttempted: len(p.sources),
		Timestamp:        started,
	}

	// A run that starts later than one window after the previous run would
	// leave a blind spot between the two windows. Widen to cover the gap.
	if !opts.Full && !opts.NoCache {
		if last, ok, err := p.store.LastRun(ctx); err == nil && ok {
			if gap := started.Sub(last); gap > window {
				p.info("widening window to cover gap since last run", "window", gap)
				window = gap
			}
		}
	}

	p.stage = StageFetching
	results := p.fetcher.FetchAll(ctx, p.sources)

	var fetched []domain.Article
	for _, res := range results {
		if res.Err != nil {
			report.SourcesFailed = append(report.SourcesFailed, res.Source.Name)
			continue
		}
		articles, err := parser.Parse(res.Body, res.Source)
		if err != nil {
			p.warn("feed unparseable, skipping source", "source", res.Source.Name, "error", err)
			report.SourcesFailed = append(report.SourcesFailed, res.Source.Name)
			continue
		}
		fetched = append(fetched, articles...)
	}
	report.ArticlesFetched = len(fetched)

	if len(fetched) == 0 {
		p.stage = StageFailed
		return domain.Digest{}, report, domain.ErrTotalSourceFailure
	}

	p.stage = StageFiltering
	recent := FilterWindow(fetched, started, window)
	report.ArticlesFiltered = len(recent)

	p.stage = StageDiffing
	fresh := recent
	if !opts.Full && !opts.NoCache {
		var seen []domain.Article
		var err error
		fresh, seen, err = p.store.Diff(ctx, recent)
		if err != nil {
			p.stage = StageFailed
			return domain.Digest{}, report, err
		}
		p.info("cache diff", "fresh", len(fresh), "seen", len(seen))
	}

	if len(fresh) == 0 {
		// Quiet window: every recent article was already processed. Not a
		// failure; the caller gets an empty digest.
		p.stage = StageDone
		if err := p.finishRun(ctx, opts, report); err != nil {
			return domain.Digest{}, report, err
		}
		return domain.Digest{GeneratedAt: started, Window: window, TopN: topN}, report, nil
	}

	p.stage = StageScoring
	scored, failures := p.dispatcher.ScoreAll(ctx, fresh)
	report.ArticlesScored = len(scored)
	report.ScoringFailures = failures

	if len(scored) == 0 {
		p.stage = StageFailed
		return domain.Digest{}, report, domain.ErrNothingToScore
	}

	p.stage = StageRanking
	top, rest := Truncate(Rank(scored), topN)

	p.stage = StageSummarizing
	summarized := p.dispatcher.SummarizeAll(ctx, top)

	p.stage = StageTrending
	trend := p.dispatcher.Trend(ctx, summarized)

	digest := domain.Digest{
		GeneratedAt: started,
		Window:      window,
		TopN:        topN,
		Top:         summarized,
		Rest:        rest,
		Trend:       trend,
	}

	// Only articles that made it through scoring are committed; a dropped
	// batch gets another chance next run.
	if !opts.NoCache {
		committed := make([]domain.Article, 0, len(scored))
		for _, a := range scored {
			committed = append(committed, a.Article)
		}
		if err := p.store.Commit(ctx, committed, started); err != nil {
			p.stage = StageFailed
			return domain.Digest{}, report, err
		}
	}

	p.stage = StageDone
	if err := p.finishRun(ctx, opts, report); err != nil {
		return domain.Digest{}, report, err
	}

	p.info("run complete",
		"sources_failed", len(report.SourcesFailed),
		"fetched", report.ArticlesFetched,
		"filtered", report.ArticlesFiltered,
		"scored", report.ArticlesScored,
		"scoring_failures", report.ScoringFailures,
	)
	return digest, report, nil
}

// finishRun appends the run to the run log. Full and no-cache runs are
// not recorded: the log feeds gap widening, which must only consider
// runs that diffed and committed their whole window.
func (p *Pipeline) finishRun(ctx context.Context, opts Options, report domain.RunReport) error {
	if opts.Full || opts.NoCache {
		return nil
	}
	return p.store.RecordRun(ctx, report)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
