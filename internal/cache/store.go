package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

const (
	timeLayout = time.RFC3339
	leaseKey   = "pipeline"
	diffChunk  = 500
)

// Store is the incremental cache: an append-only log of processed article
// fingerprints plus a run log, backed by a single SQLite file. All
// failures surface as *domain.CacheError, which the orchestrator treats
// as fatal for the run.
type Store struct {
	conn *sql.DB
	path string
}

var _ ports.SeenStore = (*Store)(nil)

// Open creates the cache file (and its directory) if needed and applies
// the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &domain.CacheError{Op: "open", Err: err}
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &domain.CacheError{Op: "open", Err: err}
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, &domain.CacheError{Op: "migrate", Err: err}
	}
	return s, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS seen_articles (
			article_id   TEXT PRIMARY KEY,
			title        TEXT NOT NULL DEFAULT '',
			source       TEXT NOT NULL DEFAULT '',
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_seen_processed_at ON seen_articles(processed_at)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			ran_at            TEXT NOT NULL,
			sources_attempted INTEGER NOT NULL,
			sources_failed    INTEGER NOT NULL,
			articles_fetched  INTEGER NOT NULL,
			articles_filtered INTEGER NOT NULL,
			articles_scored   INTEGER NOT NULL,
			scoring_failures  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leases (
			name       TEXT PRIMARY KEY,
			owner      TEXT NOT NULL,
			expires_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Diff partitions articles into never-seen and already-seen, preserving
// input order in both halves.
func (s *Store) Diff(ctx context.Context, articles []domain.Article) (fresh, seen []domain.Article, err error) {
	known := make(map[string]bool, len(articles))

	for start := 0; start < len(articles); start += diffChunk {
		end := min(start+diffChunk, len(articles))
		chunk := articles[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, len(chunk))
		for i, a := range chunk {
			placeholders[i] = "?"
			args[i] = a.ID
		}

		query := `SELECT article_id FROM seen_articles WHERE article_id IN (` +
			strings.Join(placeholders, ",") + `)`
		rows, qErr := s.conn.QueryContext(ctx, query, args...)
		if qErr != nil {
			return nil, nil, &domain.CacheError{Op: "diff", Err: qErr}
		}
		for rows.Next() {
			var id string
			if scanErr := rows.Scan(&id); scanErr != nil {
				_ = rows.Close()
				return nil, nil, &domain.CacheError{Op: "diff", Err: scanErr}
			}
			known[id] = true
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			_ = rows.Close()
			return nil, nil, &domain.CacheError{Op: "diff", Err: rowsErr}
		}
		if closeErr := rows.Close(); closeErr != nil {
			return nil, nil, &domain.CacheError{Op: "diff", Err: closeErr}
		}
	}

	for _, a := range articles {
		if known[a.ID] {
			seen = append(seen, a)
		} else {
			fresh = append(fresh, a)
		}
	}
	return fresh, seen, nil
}

// Commit records the articles as processed in one transaction. It runs
// once, after the whole pipeline succeeded, so a crash mid-run means full
// reprocessing next time rather than silent loss.
func (s *Store) Commit(ctx context.Context, articles []domain.Article, at time.Time) error {
	if len(articles) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &domain.CacheError{Op: "commit", Err: err}
	}

	stmt := `INSERT OR IGNORE INTO seen_articles (article_id, title, source, processed_at)
	         VALUES (?, ?, ?, ?)`
	for _, a := range articles {
		if _, err := tx.ExecContext(ctx, stmt, a.ID, a.Title, a.SourceName, at.UTC().Format(timeLayout)); err != nil {
			_ = tx.Rollback()
			return &domain.CacheError{Op: "commit", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &domain.CacheError{Op: "commit", Err: err}
	}
	return nil
}

// Prune drops entries processed before now-horizon. Safe as long as the
// horizon stays at least twice the largest supported window: the window
// filter already excludes anything that old, so a pruned entry cannot
// cause reprocessing.
func (s *Store) Prune(ctx context.Context, horizon time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-horizon).Format(timeLayout)

	res, err := s.conn.ExecContext(ctx, `DELETE FROM seen_articles WHERE processed_at < ?`, cutoff)
	if err != nil {
		return 0, &domain.CacheError{Op: "prune", Err: err}
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM runs WHERE ran_at < ?`, cutoff); err != nil {
		return 0, &domain.CacheError{Op: "prune", Err: err}
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// RecordRun appends one run report to the run log.
func (s *Store) RecordRun(ctx context.Context, report domain.RunReport) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (ran_at, sources_attempted, sources_failed, articles_fetched,
		                   articles_filtered, articles_scored, scoring_failures)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UTC().Format(timeLayout),
		report.SourcesAttempted,
		len(report.SourcesFailed),
		report.ArticlesFetched,
		report.ArticlesFiltered,
		report.ArticlesScored,
		report.ScoringFailures,
	)
	if err != nil {
		return &domain.CacheError{Op: "record run", Err: err}
	}
	return nil
}

// LastRun returns when the most recent run finished, if any run exists.
func (s *Store) LastRun(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := s.conn.QueryRowContext(ctx, `SELECT ran_at FROM runs ORDER BY id DESC LIMIT 1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, &domain.CacheError{Op: "last run", Err: err}
	}

	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, false, &domain.CacheError{Op: "last run", Err: err}
	}
	return t, true, nil
}

// ErrLeaseHeld means another run currently owns the cache.
var ErrLeaseHeld = fmt.Errorf("cache lease held by another run")

// AcquireLease claims exclusive pipeline access, so a cron-triggered run
// and a manual run cannot write the cache concurrently. An expired lease
// is stolen.
func (s *Store) AcquireLease(ctx context.Context, owner string, ttl time.Duration) error {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO leases (name, owner, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET owner = excluded.owner, expires_at = excluded.expires_at
		 WHERE leases.expires_at < ? OR leases.owner = excluded.owner`,
		leaseKey, owner, now.Add(ttl).Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return &domain.CacheError{Op: "acquire lease", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeaseHeld
	}
	return nil
}

// ReleaseLease frees the pipeline lease if owner still holds it.
func (s *Store) ReleaseLease(ctx context.Context, owner string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM leases WHERE name = ? AND owner = ?`, leaseKey, owner)
	if err != nil {
		return &domain.CacheError{Op: "release lease", Err: err}
	}
	return nil
}
