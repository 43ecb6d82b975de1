package pipeline

import (
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

func TestFilterWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	window := 48 * time.Hour

	articles := []domain.Article{
		{ID: "new", PublishedAt: now.Add(-time.Hour)},
		{ID: "boundary", PublishedAt: now.Add(-window)},
		{ID: "too-old", PublishedAt: now.Add(-window - time.Second)},
		{ID: "undated"},
		{ID: "future", PublishedAt: now.Add(time.Hour)},
	}

	got := FilterWindow(articles, now, window)

	want := []string{"new", "boundary", "future"}
	if len(got) != len(want) {
		t.Fatalf("kept %d articles, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("kept[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestFilterWindowDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	now := time.Now()
	articles := []domain.Article{
		{ID: "a", PublishedAt: now},
		{ID: "b", PublishedAt: now.Add(-100 * time.Hour)},
	}

	_ = FilterWindow(articles, now, time.Hour)

	if articles[0].ID != "a" || articles[1].ID != "b" {
		t.Error("input slice was reordered")
	}
}
