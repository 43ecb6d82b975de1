package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/pipeline"
)

// A configured fetch timeout must reach the HTTP client: with a 50ms
// timeout, a source that takes 300ms to answer is a fetch failure, and a
// run with only that source fails with ErrTotalSourceFailure instead of
// proceeding to scoring.
func TestRunAppliesConfiguredFetchTimeout(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	slowSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`+
			`<item><title>a</title><link>https://example.com/a</link><pubDate>%s</pubDate></item>`+
			`</channel></rss>`, now.Add(-time.Hour).Format("Mon, 02 Jan 2006 15:04:05 -0700"))
	}))
	defer slowSrv.Close()

	cfg := config.Config{
		Fetch:    config.FetchConfig{Concurrency: 1, Timeout: 50 * time.Millisecond},
		Pipeline: config.PipelineConfig{Window: 48 * time.Hour, TopN: 5},
		Oracle: config.OracleConfig{
			Endpoint: "http://127.0.0.1:1", Model: "m", APIKey: "k",
			Timeout: time.Second, BatchSize: 1, MaxAttempts: 1, Parallelism: 1,
		},
		Cache:   config.CacheConfig{Path: filepath.Join(t.TempDir(), "cache.db"), Retention: 30 * 24 * time.Hour},
		Output:  config.OutputConfig{Dir: t.TempDir()},
		Sources: []config.SourceConfig{{Name: "slow", URL: slowSrv.URL}},
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	_, err = a.Run(context.Background(), pipeline.Options{})
	if !errors.Is(err, domain.ErrTotalSourceFailure) {
		t.Fatalf("err = %v, want ErrTotalSourceFailure (fetch timeout not applied?)", err)
	}
}
