package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/feeds"
)

const (
	defaultConcurrency = 10
	defaultTimeout     = 15 * time.Second
	maxBodyBytes       = 5 << 20
	userAgent          = "ai-daily-digest/1.0 (RSS Reader)"
	acceptHeader       = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
)

// FailureKind classifies why a single source could not be fetched.
type FailureKind string

const (
	FailTimeout    FailureKind = "timeout"
	FailConnection FailureKind = "connection"
	FailHTTPStatus FailureKind = "http_status"
)

// SourceError is a typed per-source fetch failure. It never aborts the
// run; the source is recorded and skipped.
type SourceError struct {
	Source     string
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.Kind == FailHTTPStatus {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Result pairs one source with either its raw payload or its failure.
type Result struct {
	Source      feeds.Source
	Body        []byte
	ContentType string
	Err         *SourceError
}

// Fetcher pulls feed payloads with bounded concurrency and per-request
// timeouts. Failing sources are isolated; siblings keep going.
type Fetcher struct {
	client      *http.Client
	concurrency int
	logger      *slog.Logger
}

// New wires an HTTP client; a nil client gets the default timeout, and
// concurrency <= 0 falls back to 10 workers.
func New(client *http.Client, concurrency int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Fetcher{client: client, concurrency: concurrency, logger: logger}
}

// FetchAll fetches every source and returns one Result per source, in
// input order. At most f.concurrency requests are in flight at once.
// Cancelling ctx aborts requests that have not finished; results already
// collected are still returned.
func (f *Fetcher) FetchAll(ctx context.Context, sources []feeds.Source) []Result {
	results := make([]Result, len(sources))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, f.concurrency)
	)

	for i, src := range sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, src feeds.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			res := f.fetchOne(ctx, src)

			mu.Lock()
			results[idx] = res
			mu.Unlock()
		}(i, src)
	}
	wg.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, src feeds.Source) Result {
	res := Result{Source: src}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		res.Err = &SourceError{Source: src.Name, Kind: FailConnection, Err: err}
		return res
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		res.Err = &SourceError{Source: src.Name, Kind: classify(err), Err: err}
		f.debug("source failed", "source", src.Name, "kind", res.Err.Kind, "error", err)
		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		res.Err = &SourceError{Source: src.Name, Kind: FailHTTPStatus, StatusCode: resp.StatusCode}
		f.debug("source failed", "source", src.Name, "status", resp.StatusCode)
		return res
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		res.Err = &SourceError{Source: src.Name, Kind: classify(err), Err: err}
		return res
	}

	res.Body = body
	res.ContentType = resp.Header.Get("Content-Type")
	return res
}

func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailTimeout
	}
	return FailConnection
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
