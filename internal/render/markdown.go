package render

import (
	"fmt"
	"strings"

	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// categoryMeta drives section headers; iteration uses categoryOrder so
// the layout is stable across runs.
var (
	categoryOrder = []domain.Category{
		domain.CategoryAIML,
		domain.CategorySecurity,
		domain.CategoryEngineering,
		domain.CategoryTools,
		domain.CategoryOpinion,
		domain.CategoryOther,
	}
	categoryMeta = map[domain.Category]struct {
		Emoji string
		Label string
	}{
		domain.CategoryAIML:        {"🤖", "AI / ML"},
		domain.CategorySecurity:    {"🔒", "安全"},
		domain.CategoryEngineering: {"⚙️", "工程"},
		domain.CategoryTools:       {"🛠", "工具 / 开源"},
		domain.CategoryOpinion:     {"💡", "观点 / 杂谈"},
		domain.CategoryOther:       {"📝", "其他"},
	}
)

const (
	featuredCount = 3
	perCategory   = 5
)

// Markdown renders a digest as a Chinese-language markdown document:
// trend highlights, the top three in detail, then a per-category recap.
type Markdown struct{}

var _ ports.Renderer = Markdown{}

func NewMarkdown() Markdown { return Markdown{} }

func (Markdown) Render(digest domain.Digest, report domain.RunReport) domain.Document {
	var sb strings.Builder
	date := digest.GeneratedAt.Format("2006年01月02日")
	hours := int(digest.Window.Hours())

	fmt.Fprintf(&sb, "# 🚀 技术日报 | %s\n\n", date)
	fmt.Fprintf(&sb, "*从 %d 个顶级技术博客精选 | 近 %d 小时 | Top %d 必读*\n\n---\n\n",
		report.SourcesAttempted, hours, digest.TopN)

	if digest.Trend != "" {
		sb.WriteString("## 📝 今日看点\n\n")
		sb.WriteString(digest.Trend)
		sb.WriteString("\n\n---\n\n")
	}

	if len(digest.Top) > 0 {
		sb.WriteString("## 🏆 今日必读\n\n")
		featured := digest.Top
		if len(featured) > featuredCount {
			featured = featured[:featuredCount]
		}
		for i, a := range featured {
			writeFeatured(&sb, i+1, a)
		}
	}

	writeCategories(&sb, digest)

	sb.WriteString("---\n\n")
	fmt.Fprintf(&sb, "*Generated at %s by AI Daily Digest*\n",
		digest.GeneratedAt.Format("2006-01-02 15:04:05"))

	if len(report.SourcesFailed) > 0 || report.ScoringFailures > 0 {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "*本期为降级运行: %d 个源失败, %d 篇文章评分失败*\n",
			len(report.SourcesFailed), report.ScoringFailures)
	}

	return domain.Document{
		Title:       fmt.Sprintf("技术日报 %s", digest.GeneratedAt.Format("2006-01-02")),
		Markdown:    sb.String(),
		GeneratedAt: digest.GeneratedAt,
	}
}

func writeFeatured(sb *strings.Builder, rank int, a domain.SummarizedArticle) {
	meta := categoryMeta[a.Category]
	title := a.TranslatedTitle
	if title == "" {
		title = a.Title
	}

	fmt.Fprintf(sb, "### %d. %s\n\n", rank, title)
	fmt.Fprintf(sb, "**%s %s** | 评分: %.1f/10\n\n", meta.Emoji, meta.Label, a.Score)
	fmt.Fprintf(sb, "📰 **来源**: [%s](%s)\n\n", a.SourceName, a.SourceURL)
	fmt.Fprintf(sb, "🔗 **原文**: [%s](%s)\n\n", a.Title, a.Link)
	if a.Summary != "" {
		fmt.Fprintf(sb, "📝 **摘要**: %s\n\n", a.Summary)
	}
	if a.Recommendation != "" {
		fmt.Fprintf(sb, "💡 **推荐**: %s\n\n", a.Recommendation)
	}
	if len(a.Keywords) > 0 {
		fmt.Fprintf(sb, "🏷️ **标签**: %s\n\n", strings.Join(a.Keywords, ", "))
	}
	sb.WriteString("---\n\n")
}

// writeCategories lists every scored article (top and rest) grouped by
// category, capped per section, in rank order within each group.
func writeCategories(sb *strings.Builder, digest domain.Digest) {
	type entry struct {
		title, link, source string
		score               float64
	}

	grouped := make(map[domain.Category][]entry)
	for _, a := range digest.Top {
		title := a.TranslatedTitle
		if title == "" {
			title = a.Title
		}
		grouped[a.Category] = append(grouped[a.Category], entry{title, a.Link, a.SourceName, a.Score})
	}
	for _, a := range digest.Rest {
		grouped[a.Category] = append(grouped[a.Category], entry{a.Title, a.Link, a.SourceName, a.Score})
	}
	if len(grouped) == 0 {
		return
	}

	sb.WriteString("## 📊 分类速览\n\n")
	for _, cat := range categoryOrder {
		entries := grouped[cat]
		if len(entries) == 0 {
			continue
		}
		if len(entries) > perCategory {
			entries = entries[:perCategory]
		}
		meta := categoryMeta[cat]
		fmt.Fprintf(sb, "### %s %s\n\n", meta.Emoji, meta.Label)
		for _, e := range entries {
			fmt.Fprintf(sb, "- [%s](%s) - %s (评分: %.1f)\n", e.title, e.link, e.source, e.score)
		}
		sb.WriteString("\n")
	}
}
