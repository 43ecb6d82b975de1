package ports

import (
	"context"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

// Oracle is the external scoring/summarization service. Every call may
// fail with a *domain.OracleError; callers decide about retries from its
// classification.
type Oracle interface {
	Score(ctx context.Context, articles []domain.Article) ([]domain.Scorecard, error)
	Summarize(ctx context.Context, articles []domain.ScoredArticle) ([]domain.Summary, error)
	SynthesizeTrend(ctx context.Context, articles []domain.SummarizedArticle) (string, error)
}

// SeenStore is the durable incremental cache of processed article IDs.
type SeenStore interface {
	// Diff partitions articles into never-seen and already-seen, preserving
	// input order in both halves.
	Diff(ctx context.Context, articles []domain.Article) (fresh, seen []domain.Article, err error)
	// Commit durably records the articles as processed. Called once, at the
	// end of a fully successful run.
	Commit(ctx context.Context, articles []domain.Article, at time.Time) error
	// Prune drops entries whose processed timestamp is older than horizon.
	Prune(ctx context.Context, horizon time.Duration) (int64, error)
	// LastRun returns the timestamp of the most recent successful run.
	LastRun(ctx context.Context) (time.Time, bool, error)
	RecordRun(ctx context.Context, report domain.RunReport) error
	// AcquireLease blocks overlapping runs (cron plus manual) from writing
	// the cache concurrently. ReleaseLease frees it.
	AcquireLease(ctx context.Context, owner string, ttl time.Duration) error
	ReleaseLease(ctx context.Context, owner string) error
	Close() error
}

// Renderer turns a finished digest into a formatted document.
type Renderer interface {
	Render(digest domain.Digest, report domain.RunReport) domain.Document
}

// Exporter delivers a finished document somewhere (file, email, ...).
// Adapters report success or failure; any retry contract lives with them.
type Exporter interface {
	Name() string
	Export(ctx context.Context, doc domain.Document) error
}

// Scheduler controls when recurring pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
