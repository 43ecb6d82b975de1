package domain

import "time"

// Scorecard is the scoring oracle's verdict for one article, keyed by the
// article fingerprint so batch responses map back order-independently.
type Scorecard struct {
	ArticleID  string
	Relevance  int
	Quality    int
	Timeliness int
	Category   Category
	Keywords   []string
}

// Summary is the summarization oracle's output for one top-ranked article.
type Summary struct {
	ArticleID       string
	Summary         string
	TranslatedTitle string
	Recommendation  string
}

// Document is a finished rendered digest, ready for an export adapter.
type Document struct {
	Title       string
	Markdown    string
	GeneratedAt time.Time
}
