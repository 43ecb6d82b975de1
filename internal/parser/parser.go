package parser

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/feeds"
)

const maxSummaryRunes = 500

// Parse normalizes one fetched feed payload into Article records. gofeed
// sniffs RSS 2.0 vs Atom from the body itself, so the source hint is
// advisory. A payload that parses as neither returns an error; the caller
// records it and moves on, one bad feed never aborts the batch.
//
// Entries missing a title or link fall back to the feed-level values.
// Entries with a missing or unparseable publish date keep a zero
// PublishedAt and are later excluded by the time-window filter.
func Parse(body []byte, src feeds.Source) ([]domain.Article, error) {
	fp := gofeed.NewParser()
	feed, err := fp.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = strings.TrimSpace(feed.Title)
		}

		link := strings.TrimSpace(item.Link)
		if link == "" {
			link = strings.TrimSpace(feed.Link)
		}
		if title == "" && link == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		// Link-less entries fingerprint on the title instead, so they do
		// not all collapse into a single ID per source.
		fingerprintKey := link
		if fingerprintKey == "" {
			fingerprintKey = title
		}

		article := domain.Article{
			ID:         Fingerprint(fingerprintKey, src.Name),
			Title:      title,
			Link:       link,
			SourceName: src.Name,
			SourceURL:  src.Site,
			RawSummary: truncateRunes(stripHTML(summary), maxSummaryRunes),
		}
		if item.PublishedParsed != nil {
			article.PublishedAt = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			article.PublishedAt = item.UpdatedParsed.UTC()
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// Fingerprint derives the stable article ID from the canonical link and
// the source name: the first 16 hex characters of a SHA-256 digest.
// Re-fetching the same entry always yields the same ID, even when
// feed-level metadata changes.
func Fingerprint(link, sourceName string) string {
	sum := sha256.Sum256([]byte(NormalizeLink(link) + "\n" + sourceName))
	return fmt.Sprintf("%x", sum)[:16]
}

// trackingParams are query keys that vary per campaign without changing
// the destination; they are stripped before fingerprinting.
var trackingParams = map[string]bool{
	"ref":    true,
	"fbclid": true,
	"gclid":  true,
	"mc_cid": true,
	"mc_eid": true,
}

// NormalizeLink canonicalizes an article URL: scheme, host and path are
// lowercased, default ports, fragments, trailing slashes and tracking
// query params dropped. Unparseable input is returned trimmed as-is.
func NormalizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host

	u.Path = strings.ToLower(u.Path)
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if trackingParams[strings.ToLower(key)] || strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// stripHTML extracts visible text from an HTML fragment and collapses
// runs of whitespace. Best effort: input that will not parse comes back
// trimmed instead of raising.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
