package pipeline

import (
	"testing"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

func scored(id string, score float64, published time.Time) domain.ScoredArticle {
	return domain.ScoredArticle{
		Article: domain.Article{ID: id, PublishedAt: published},
		Score:   score,
	}
}

func TestRankIsDeterministic(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	input := []domain.ScoredArticle{
		scored("c", 7.0, base),
		scored("a", 9.0, base),
		scored("d", 7.0, base.Add(time.Hour)), // same score, newer
		scored("b", 7.0, base),                // same score and date as c, smaller ID
	}

	want := []string{"a", "d", "b", "c"}
	for run := 0; run < 3; run++ {
		got := Rank(input)
		for i, id := range want {
			if got[i].ID != id {
				t.Fatalf("run %d: rank[%d] = %s, want %s", run, i, got[i].ID, id)
			}
		}
	}

	if input[0].ID != "c" {
		t.Error("Rank mutated its input")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	ranked := []domain.ScoredArticle{
		scored("a", 9, time.Time{}),
		scored("b", 8, time.Time{}),
		scored("c", 7, time.Time{}),
	}

	top, rest := Truncate(ranked, 2)
	if len(top) != 2 || len(rest) != 1 {
		t.Fatalf("top=%d rest=%d, want 2/1", len(top), len(rest))
	}
	if top[0].ID != "a" || rest[0].ID != "c" {
		t.Errorf("split = %s.. / %s..", top[0].ID, rest[0].ID)
	}

	top, rest = Truncate(ranked, 10)
	if len(top) != 3 || len(rest) != 0 {
		t.Errorf("oversized n: top=%d rest=%d", len(top), len(rest))
	}

	top, rest = Truncate(ranked, 0)
	if len(top) != 0 || len(rest) != 3 {
		t.Errorf("zero n: top=%d rest=%d", len(top), len(rest))
	}
}
