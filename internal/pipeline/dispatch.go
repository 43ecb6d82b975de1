package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

const (
	defaultBatchSize   = 10
	defaultMaxAttempts = 3
	defaultParallelism = 2
)

// Dispatcher fans article batches out to the oracle with bounded
// parallelism and retries transient faults with exponential backoff.
// Permanent faults drop the affected batch and keep the run going.
type Dispatcher struct {
	oracle         ports.Oracle
	batchSize      int
	maxAttempts    int
	parallelism    int
	initialBackoff time.Duration
	logger         *slog.Logger
}

// DispatchConfig bounds one dispatcher. Zero values fall back to the
// defaults above.
type DispatchConfig struct {
	BatchSize      int
	MaxAttempts    int
	Parallelism    int
	InitialBackoff time.Duration
}

func NewDispatcher(oracle ports.Oracle, cfg DispatchConfig, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		oracle:         oracle,
		batchSize:      cfg.BatchSize,
		maxAttempts:    cfg.MaxAttempts,
		parallelism:    cfg.Parallelism,
		initialBackoff: cfg.InitialBackoff,
		logger:         logger,
	}
	if d.batchSize <= 0 {
		d.batchSize = defaultBatchSize
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = defaultMaxAttempts
	}
	if d.parallelism <= 0 {
		d.parallelism = defaultParallelism
	}
	if d.initialBackoff <= 0 {
		d.initialBackoff = 500 * time.Millisecond
	}
	return d
}

// withRetry runs op, retrying only faults the oracle classified as
// transient (rate limits and timeouts). Everything else fails fast.
func (d *Dispatcher) withRetry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.initialBackoff

	attempts := uint64(d.maxAttempts - 1)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if domain.RetryableOracleError(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, attempts), ctx))
}

// ScoreAll scores every article through the oracle in batches. It
// returns one ScoredArticle per article the oracle answered for, in
// input order, plus the count of articles lost to exhausted retries or
// to the oracle silently skipping them.
func (d *Dispatcher) ScoreAll(ctx context.Context, articles []domain.Article) ([]domain.ScoredArticle, int) {
	if len(articles) == 0 {
		return nil, 0
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		cards = make(map[string]domain.Scorecard, len(articles))
	)
	sem := make(chan struct{}, d.parallelism)

	for start := 0; start < len(articles); start += d.batchSize {
		end := min(start+d.batchSize, len(articles))
		batch := articles[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func(batch []domain.Article) {
			defer wg.Done()
			defer func() { <-sem }()

			var result []domain.Scorecard
			err := d.withRetry(ctx, func() error {
				var callErr error
				result, callErr = d.oracle.Score(ctx, batch)
				return callErr
			})
			if err != nil {
				d.warn("scoring batch dropped", "size", len(batch), "error", err)
				return
			}

			mu.Lock()
			for _, card := range result {
				cards[card.ArticleID] = card
			}
			mu.Unlock()
		}(batch)
	}
	wg.Wait()

	scored := make([]domain.ScoredArticle, 0, len(cards))
	failures := 0
	for _, a := range articles {
		card, ok := cards[a.ID]
		if !ok {
			failures++
			continue
		}
		scored = append(scored, domain.ScoredArticle{
			Article:    a,
			Relevance:  card.Relevance,
			Quality:    card.Quality,
			Timeliness: card.Timeliness,
			Score:      domain.AggregateScore(card.Relevance, card.Quality, card.Timeliness),
			Category:   card.Category,
			Keywords:   card.Keywords,
		})
	}
	return scored, failures
}

// SummarizeAll enriches the top-ranked articles. An article whose
// summarization permanently fails is demoted, not dropped: it stays in
// the digest with its score but without summary fields.
func (d *Dispatcher) SummarizeAll(ctx context.Context, top []domain.ScoredArticle) []domain.SummarizedArticle {
	if len(top) == 0 {
		return nil
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		summaries = make(map[string]domain.Summary, len(top))
	)
	sem := make(chan struct{}, d.parallelism)

	for start := 0; start < len(top); start += d.batchSize {
		end := min(start+d.batchSize, len(top))
		batch := top[start:end]

		wg.Add(1)
		sem <- struct{}{}
		go func(batch []domain.ScoredArticle) {
			defer wg.Done()
			defer func() { <-sem }()

			var result []domain.Summary
			err := d.withRetry(ctx, func() error {
				var callErr error
				result, callErr = d.oracle.Summarize(ctx, batch)
				return callErr
			})
			if err != nil {
				d.warn("summary batch degraded", "size", len(batch), "error", err)
				return
			}

			mu.Lock()
			for _, s := range result {
				summaries[s.ArticleID] = s
			}
			mu.Unlock()
		}(batch)
	}
	wg.Wait()

	out := make([]domain.SummarizedArticle, 0, len(top))
	for _, a := range top {
		s := summaries[a.ID]
		out = append(out, domain.SummarizedArticle{
			ScoredArticle:   a,
			Summary:         s.Summary,
			TranslatedTitle: s.TranslatedTitle,
			Recommendation:  s.Recommendation,
		})
	}
	return out
}

// Trend asks the oracle for the cross-article trend narrative. A trend
// failure never degrades the digest beyond an empty section.
func (d *Dispatcher) Trend(ctx context.Context, articles []domain.SummarizedArticle) string {
	if len(articles) == 0 {
		return ""
	}

	var trend string
	err := d.withRetry(ctx, func() error {
		var callErr error
		trend, callErr = d.oracle.SynthesizeTrend(ctx, articles)
		return callErr
	})
	if err != nil {
		d.warn("trend synthesis skipped", "error", err)
		return ""
	}
	return trend
}

func (d *Dispatcher) warn(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Warn(msg, args...)
	}
}
