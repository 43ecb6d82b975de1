package pipeline

import (
	"sort"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

// Rank returns the articles ordered by aggregate score, best first. Ties
// break on the newer publish date, then on the fingerprint, so the same
// input always yields the same order. The input slice is not modified.
func Rank(articles []domain.ScoredArticle) []domain.ScoredArticle {
	ranked := make([]domain.ScoredArticle, len(articles))
	copy(ranked, articles)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})
	return ranked
}

// Truncate splits a ranked list into the featured top-n and the rest.
func Truncate(ranked []domain.ScoredArticle, n int) (top, rest []domain.ScoredArticle) {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], ranked[n:]
}
