package domain

import "time"

// Article is the normalized representation of one feed entry. ID is a
// stable fingerprint of the canonical link and the source name, so the
// same entry fetched twice always carries the same ID.
type Article struct {
	ID          string
	Title       string
	Link        string
	PublishedAt time.Time
	SourceName  string
	SourceURL   string
	RawSummary  string
}

// Category is the closed set of digest sections an article can land in.
type Category string

const (
	CategoryAIML        Category = "ai-ml"
	CategorySecurity    Category = "security"
	CategoryEngineering Category = "engineering"
	CategoryTools       Category = "tools"
	CategoryOpinion     Category = "opinion"
	CategoryOther       Category = "other"
)

// ParseCategory maps an oracle label onto the closed category set,
// defaulting to CategoryOther for anything unrecognized.
func ParseCategory(label string) Category {
	switch Category(label) {
	case CategoryAIML, CategorySecurity, CategoryEngineering, CategoryTools, CategoryOpinion:
		return Category(label)
	default:
		return CategoryOther
	}
}

// ScoredArticle is an Article annotated by the scoring oracle.
type ScoredArticle struct {
	Article
	Relevance  int
	Quality    int
	Timeliness int
	Score      float64
	Category   Category
	Keywords   []string
}

// AggregateScore is the single ranking key: the equal-weight mean of the
// three per-dimension scores.
func AggregateScore(relevance, quality, timeliness int) float64 {
	return float64(relevance+quality+timeliness) / 3.0
}

// SummarizedArticle is a ScoredArticle that made the top-N cut and was
// enriched by the summarization oracle. An article whose summarization
// permanently failed keeps empty annotation fields.
type SummarizedArticle struct {
	ScoredArticle
	Summary         string
	TranslatedTitle string
	Recommendation  string
}

// Digest is the finished, ranked result a run hands to the renderer.
// It is passed by value; nothing mutates it after the handoff.
type Digest struct {
	GeneratedAt time.Time
	Window      time.Duration
	TopN        int
	Top         []SummarizedArticle
	Rest        []ScoredArticle
	Trend       string
}

// RunReport aggregates everything that went wrong (and right) in one run.
type RunReport struct {
	SourcesAttempted int
	SourcesFailed    []string
	ArticlesFetched  int
	ArticlesFiltered int
	ArticlesScored   int
	ScoringFailures  int
	Timestamp        time.Time
}
