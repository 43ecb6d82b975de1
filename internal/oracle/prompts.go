package oracle

import (
	"fmt"
	"strings"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
)

const scoringHeader = `You are a technology content curator selecting articles for a daily
digest aimed at engineers.

Score each article below on three dimensions (integers 1-10, 10 highest):
- relevance: value for technology/programming/AI practitioners
- quality: depth and writing quality of the article itself
- timeliness: whether it is worth reading right now

Assign exactly one category per article from this list:
ai-ml, security, engineering, tools, opinion, other

Extract 2-4 short English keywords per article (e.g. "Rust", "LLM").

Articles:

%s

Return strict JSON only, no markdown fences or commentary:
{"results": [{"id": "<article id>", "relevance": 8, "quality": 7,
"timeliness": 9, "category": "ai-ml", "keywords": ["LLM"]}]}`

func scoringPrompt(articles []domain.Article) string {
	var sb strings.Builder
	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&sb, "id %s: [%s] %s\n%s", a.ID, a.SourceName, a.Title, truncate(a.RawSummary, 300))
	}
	return fmt.Sprintf(scoringHeader, sb.String())
}

const summaryHeader = `You are a technology content curator preparing the featured section of
a daily digest.

For each article below produce:
- translated_title: a concise Chinese translation of the title
- summary: 4-6 sentences covering the core topic, key arguments and impact
- recommendation: one sentence on why an engineer should read it

Articles:

%s

Return strict JSON only, no markdown fences or commentary:
{"summaries": [{"id": "<article id>", "translated_title": "...",
"summary": "...", "recommendation": "..."}]}`

func summaryPrompt(articles []domain.ScoredArticle) string {
	var sb strings.Builder
	for i, a := range articles {
		if i > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&sb, "id %s: [%s] %s\n%s", a.ID, a.SourceName, a.Title, truncate(a.RawSummary, 500))
	}
	return fmt.Sprintf(summaryHeader, sb.String())
}

const trendHeader = `Analyze today's selected technology articles and identify 2-3 macro
trends. Describe each trend in one or two sentences and note its impact
on the industry.

Articles:
%s

Return the trend list directly, nothing else:
1. ...
2. ...`

func trendPrompt(articles []domain.SummarizedArticle) string {
	var sb strings.Builder
	limit := min(len(articles), 20)
	for _, a := range articles[:limit] {
		title := a.TranslatedTitle
		if title == "" {
			title = a.Title
		}
		fmt.Fprintf(&sb, "- [%s] %s\n", a.Category, title)
	}
	return fmt.Sprintf(trendHeader, sb.String())
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
