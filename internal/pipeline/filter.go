package pipeline

import (
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

// FilterWindow returns the articles published within the window ending at
// now. The lower bound is inclusive: publishedAt == now-window stays in.
// Articles without a usable publish date carry a zero timestamp and fall
// out here. Pure; preserves input order.
func FilterWindow(articles []domain.Article, now time.Time, window time.Duration) []domain.Article {
	cutoff := now.Add(-window)
	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if !a.PublishedAt.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}
