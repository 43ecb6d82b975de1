package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/cache"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/feeds"
	"github.com/wenyunvip/ai-daily-digest/internal/fetch"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

func rssWithItems(items ...string) string {
	body := ""
	for _, item := range items {
		body += item
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>test</title>` + body + `</channel></rss>`
}

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(
		`<item><title>%s</title><link>%s</link><description>d</description><pubDate>%s</pubDate></item>`,
		title, link, published.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
}

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	s, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Degraded run: one healthy source with one in-window article, one source
// that times out, one that serves garbage. The run must still produce a
// digest and account for every failure.
func TestRunSurvivesPartialSourceFailure(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)

	goodSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Fresh article", "https://good.example.com/fresh", now.Add(-time.Hour)),
			rssItem("Stale article", "https://good.example.com/stale", now.Add(-100*time.Hour)),
		)))
	}))
	defer goodSrv.Close()

	slowSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
	}))
	defer slowSrv.Close()

	brokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not xml at all"))
	}))
	defer brokenSrv.Close()

	sources := []feeds.Source{
		{Name: "good", URL: goodSrv.URL},
		{Name: "slow", URL: slowSrv.URL},
		{Name: "broken", URL: brokenSrv.URL},
	}

	oracle := &fakeOracle{trend: "1. One clear trend."}
	store := openStore(t)
	fetcher := fetch.New(&http.Client{Timeout: 100 * time.Millisecond}, 3, nil)
	p := New(sources, fetcher, store, NewDispatcher(oracle, fastDispatchConfig(), nil), nil)

	opts := Options{
		Window: 48 * time.Hour,
		TopN:   15,
		Now:    func() time.Time { return now },
	}
	digest, report, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if p.Stage() != StageDone {
		t.Errorf("stage = %s, want %s", p.Stage(), StageDone)
	}

	if report.SourcesAttempted != 3 {
		t.Errorf("sourcesAttempted = %d", report.SourcesAttempted)
	}
	if !slices.Contains(report.SourcesFailed, "slow") || !slices.Contains(report.SourcesFailed, "broken") {
		t.Errorf("sourcesFailed = %v, want slow and broken", report.SourcesFailed)
	}
	if report.ArticlesFetched != 2 {
		t.Errorf("articlesFetched = %d, want 2", report.ArticlesFetched)
	}
	if report.ArticlesFiltered != 1 {
		t.Errorf("articlesFiltered = %d, want 1", report.ArticlesFiltered)
	}
	if report.ArticlesScored != 1 || report.ScoringFailures != 0 {
		t.Errorf("scored=%d failures=%d, want 1/0", report.ArticlesScored, report.ScoringFailures)
	}

	if len(digest.Top) != 1 || len(digest.Rest) != 0 {
		t.Fatalf("digest top=%d rest=%d, want 1/0", len(digest.Top), len(digest.Rest))
	}
	a := digest.Top[0]
	if a.Title != "Fresh article" {
		t.Errorf("featured = %q", a.Title)
	}
	if a.Summary == "" || a.TranslatedTitle == "" {
		t.Errorf("featured article missing summary fields: %+v", a)
	}
	if digest.Trend != "1. One clear trend." {
		t.Errorf("trend = %q", digest.Trend)
	}
}

// A second run over unchanged feeds sees nothing fresh and completes with
// an empty digest instead of reprocessing.
func TestRunIsIncremental(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Only article", "https://example.com/one", now.Add(-time.Hour)),
		)))
	}))
	defer srv.Close()

	sources := []feeds.Source{{Name: "only", URL: srv.URL}}
	oracle := &fakeOracle{}
	store := openStore(t)
	p := New(sources, fetch.New(srv.Client(), 1, nil), store, NewDispatcher(oracle, fastDispatchConfig(), nil), nil)

	opts := Options{Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return now }}

	first, _, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.Top) != 1 {
		t.Fatalf("first run top = %d, want 1", len(first.Top))
	}

	second, report, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Top) != 0 || len(second.Rest) != 0 {
		t.Errorf("second run reprocessed: top=%d rest=%d", len(second.Top), len(second.Rest))
	}
	if report.ArticlesFiltered != 1 {
		t.Errorf("second run filtered = %d, want 1", report.ArticlesFiltered)
	}
	if calls := oracle.scoreCalls.Load(); calls != 1 {
		t.Errorf("oracle scored %d times across both runs, want 1", calls)
	}
}

// Full mode ignores the incremental diff.
func TestRunFullReprocesses(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Only article", "https://example.com/one", now.Add(-time.Hour)),
		)))
	}))
	defer srv.Close()

	sources := []feeds.Source{{Name: "only", URL: srv.URL}}
	oracle := &fakeOracle{}
	store := openStore(t)
	p := New(sources, fetch.New(srv.Client(), 1, nil), store, NewDispatcher(oracle, fastDispatchConfig(), nil), nil)

	opts := Options{Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return now }}
	if _, _, err := p.Run(context.Background(), opts); err != nil {
		t.Fatalf("first run: %v", err)
	}

	opts.Full = true
	digest, _, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("full run: %v", err)
	}
	if len(digest.Top) != 1 {
		t.Errorf("full run top = %d, want 1", len(digest.Top))
	}
}

// A no-cache run between two incremental runs must not shrink the gap
// the second incremental run widens into: an article published in the
// stretch the no-cache run neither widened into nor committed is still
// picked up later.
func TestGapWideningIgnoresNoCacheRuns(t *testing.T) {
	t.Parallel()

	t0 := time.Now().UTC().Truncate(time.Second).Add(-200 * time.Hour)

	var (
		mu    sync.Mutex
		items = []string{rssItem("Early article", "https://example.com/early", t0.Add(-time.Hour))}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = w.Write([]byte(rssWithItems(items...)))
	}))
	defer srv.Close()

	sources := []feeds.Source{{Name: "only", URL: srv.URL}}
	store := openStore(t)
	p := New(sources, fetch.New(srv.Client(), 1, nil), store, NewDispatcher(&fakeOracle{}, fastDispatchConfig(), nil), nil)

	// Incremental run at t0 processes and records as usual.
	opts := Options{Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return t0 }}
	if _, _, err := p.Run(context.Background(), opts); err != nil {
		t.Fatalf("run at t0: %v", err)
	}

	// An article appears 30h after t0, then a no-cache run happens at
	// t0+100h. The article is 70h old by then, outside the 48h window, so
	// that run neither scores nor commits it.
	mu.Lock()
	items = append(items, rssItem("Gap article", "https://example.com/gap", t0.Add(30*time.Hour)))
	mu.Unlock()

	opts.NoCache = true
	opts.Now = func() time.Time { return t0.Add(100 * time.Hour) }
	if _, _, err := p.Run(context.Background(), opts); err != nil {
		t.Fatalf("no-cache run: %v", err)
	}

	// The next incremental run must widen against the t0 run, not the
	// no-cache run, and catch the gap article.
	opts.NoCache = false
	opts.Now = func() time.Time { return t0.Add(101 * time.Hour) }
	digest, _, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("incremental run after gap: %v", err)
	}
	if len(digest.Top) != 1 || digest.Top[0].Title != "Gap article" {
		t.Fatalf("gap article was not recovered: top = %+v", digest.Top)
	}
}

// NoCache mode leaves no trace: the next incremental run still sees the
// article as fresh.
func TestRunNoCacheSkipsCommit(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Only article", "https://example.com/one", now.Add(-time.Hour)),
		)))
	}))
	defer srv.Close()

	sources := []feeds.Source{{Name: "only", URL: srv.URL}}
	oracle := &fakeOracle{}
	store := openStore(t)
	p := New(sources, fetch.New(srv.Client(), 1, nil), store, NewDispatcher(oracle, fastDispatchConfig(), nil), nil)

	opts := Options{Window: 48 * time.Hour, TopN: 5, NoCache: true, Now: func() time.Time { return now }}
	if _, _, err := p.Run(context.Background(), opts); err != nil {
		t.Fatalf("no-cache run: %v", err)
	}

	opts.NoCache = false
	digest, _, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("followup run: %v", err)
	}
	if len(digest.Top) != 1 {
		t.Errorf("followup run top = %d, want 1 (no-cache run must not commit)", len(digest.Top))
	}
}

func TestRunTotalSourceFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sources := []feeds.Source{{Name: "down-a", URL: srv.URL}, {Name: "down-b", URL: srv.URL}}
	store := openStore(t)
	p := New(sources, fetch.New(srv.Client(), 2, nil), store, NewDispatcher(&fakeOracle{}, fastDispatchConfig(), nil), nil)

	_, report, err := p.Run(context.Background(), Options{Window: 48 * time.Hour, TopN: 5})
	if !errors.Is(err, domain.ErrTotalSourceFailure) {
		t.Fatalf("err = %v, want ErrTotalSourceFailure", err)
	}
	if p.Stage() != StageFailed {
		t.Errorf("stage = %s, want %s", p.Stage(), StageFailed)
	}
	if len(report.SourcesFailed) != 2 {
		t.Errorf("sourcesFailed = %v", report.SourcesFailed)
	}
}

func TestRunAbortsWhenNothingSurvivesScoring(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Only article", "https://example.com/one", now.Add(-time.Hour)),
		)))
	}))
	defer srv.Close()

	oracle := &fakeOracle{scoreErr: &domain.OracleError{
		Kind: domain.OracleInvalidInput,
		Err:  errors.New("rejected"),
	}}
	store := openStore(t)
	p := New([]feeds.Source{{Name: "only", URL: srv.URL}},
		fetch.New(srv.Client(), 1, nil), store, NewDispatcher(oracle, fastDispatchConfig(), nil), nil)

	_, report, err := p.Run(context.Background(), Options{
		Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return now },
	})
	if !errors.Is(err, domain.ErrNothingToScore) {
		t.Fatalf("err = %v, want ErrNothingToScore", err)
	}
	if report.ScoringFailures != 1 {
		t.Errorf("scoringFailures = %d, want 1", report.ScoringFailures)
	}

	// Nothing was committed, so the article is retried on the next run.
	oracle.scoreErr = nil
	digest, _, err := p.Run(context.Background(), Options{
		Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("recovery run: %v", err)
	}
	if len(digest.Top) != 1 {
		t.Errorf("recovery run top = %d, want 1", len(digest.Top))
	}
}

// diffFailingStore wraps a working store and poisons Diff.
type diffFailingStore struct {
	ports.SeenStore
}

func (s diffFailingStore) Diff(ctx context.Context, articles []domain.Article) ([]domain.Article, []domain.Article, error) {
	return nil, nil, &domain.CacheError{Op: "diff", Err: errors.New("disk gone")}
}

func TestRunTreatsCacheFaultAsFatal(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssWithItems(
			rssItem("Only article", "https://example.com/one", now.Add(-time.Hour)),
		)))
	}))
	defer srv.Close()

	store := diffFailingStore{SeenStore: openStore(t)}
	p := New([]feeds.Source{{Name: "only", URL: srv.URL}},
		fetch.New(srv.Client(), 1, nil), store, NewDispatcher(&fakeOracle{}, fastDispatchConfig(), nil), nil)

	_, _, err := p.Run(context.Background(), Options{
		Window: 48 * time.Hour, TopN: 5, Now: func() time.Time { return now },
	})
	var ce *domain.CacheError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want CacheError", err)
	}
	if p.Stage() != StageFailed {
		t.Errorf("stage = %s, want %s", p.Stage(), StageFailed)
	}
}
