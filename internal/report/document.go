package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"threadwatch/internal/sanitizer"
	"threadwatch/internal/types"

	"github.com/mattn/go-runewidth"
)

type Options struct {
	// TopN bounds the importance chart. DefaultTopN when <= 0.
	TopN int
	// Posts includes the big fish and full post listings.
	Posts bool
	// ContentRunes clamps post bodies. Unlimited when <= 0.
	ContentRunes int
}

const barCells = 20

// Document lays out a finished run as one markdown document: header,
// pipeline counters, the narrative report, charts and optionally the posts.
func Document(data *types.ReportData, opts Options) string {
	if data == nil {
		return ""
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	run := data.Run
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", ShortID(run.ID))
	fmt.Fprintf(&b, "**Status:** %s  \n", run.Status)
	if len(run.Keywords) > 0 {
		keywords := make([]string, 0, len(run.Keywords))
		for _, kw := range run.Keywords {
			keywords = append(keywords, "`"+strings.ReplaceAll(sanitizer.SingleLine(kw), "`", "'")+"`")
		}
		fmt.Fprintf(&b, "**Keywords:** %s  \n", strings.Join(keywords, " "))
	}
	fmt.Fprintf(&b, "**Created:** %s", run.CreatedAt)
	if run.CompletedAt != nil {
		fmt.Fprintf(&b, " | **Completed:** %s", run.CompletedAt)
	}
	b.WriteString("\n\n")

	if rows := StatRows(run.Stats); len(rows) > 0 {
		b.WriteString("## Pipeline\n\n")
		header := make([]string, 0, len(rows))
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			header = append(header, row.Label)
			values = append(values, strconv.Itoa(row.Value))
		}
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat("---|", len(rows)) + "\n")
		b.WriteString("| " + strings.Join(values, " | ") + " |\n\n")
	}

	if run.ErrorMessage != nil && strings.TrimSpace(*run.ErrorMessage) != "" {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", EscapeMarkdown(sanitizer.SingleLine(*run.ErrorMessage)))
	}

	b.WriteString("## Report\n\n")
	if run.ReportMarkdown != nil && strings.TrimSpace(*run.ReportMarkdown) != "" {
		b.WriteString(strings.TrimSpace(SafeMarkdown(*run.ReportMarkdown)))
		b.WriteString("\n\n")
	} else {
		b.WriteString("_No report available yet._\n\n")
	}

	if bars := ImportanceBars(data.AnalyzedPosts, opts.TopN); len(bars) > 0 {
		fmt.Fprintf(&b, "## Top %d by Importance\n\n```\n%s\n```\n\n", opts.TopN, RenderBars(bars))
	}

	if len(data.CategoryStats) > 0 {
		b.WriteString("## Categories\n\n")
		for _, slice := range CategorySlices(data.CategoryStats) {
			label := fmt.Sprintf("%s (%.0f%%)", EscapeMarkdown(sanitizer.SingleLine(slice.Name)), slice.Percentage)
			fmt.Fprintf(&b, "- %s: %d\n", label, slice.Count)
		}
		b.WriteString("\n")
	}

	if opts.Posts {
		if len(data.BigFish) > 0 {
			fmt.Fprintf(&b, "## Big Fish (%d)\n\n", len(data.BigFish))
			for _, post := range data.BigFish {
				writePost(&b, post, opts.ContentRunes)
			}
		}
		fmt.Fprintf(&b, "## All Posts (%d)\n\n", len(data.AnalyzedPosts))
		if len(data.AnalyzedPosts) == 0 {
			b.WriteString("_No posts found._\n\n")
		}
		for _, post := range data.AnalyzedPosts {
			writePost(&b, post, opts.ContentRunes)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writePost(b *strings.Builder, post types.AnalyzedPost, contentRunes int) {
	score := Importance(post)
	author := EscapeMarkdown(sanitizer.SingleLine(post.Author))
	if author == "" {
		author = "unknown"
	}
	fmt.Fprintf(b, "### %s", author)
	if kw := sanitizer.SingleLine(post.Keyword); kw != "" {
		fmt.Fprintf(b, " · %s", EscapeMarkdown(kw))
	}
	fmt.Fprintf(b, " · %s (%s)\n\n", FormatScore(score), Tier(score))

	content := sanitizer.Text(post.Content)
	if contentRunes > 0 {
		content = clampRunes(content, contentRunes)
	}
	if content = strings.TrimSpace(content); content != "" {
		for _, line := range strings.Split(EscapeMarkdown(content), "\n") {
			b.WriteString("> " + line + "\n")
		}
		b.WriteString("\n")
	}
	if summary := sanitizer.SingleLine(post.Analysis.Summary); summary != "" {
		b.WriteString(EscapeMarkdown(summary) + "\n\n")
	}
	if len(post.Analysis.Categories) > 0 {
		cats := make([]string, 0, len(post.Analysis.Categories))
		for _, cat := range post.Analysis.Categories {
			cats = append(cats, EscapeMarkdown(sanitizer.SingleLine(cat)))
		}
		fmt.Fprintf(b, "_%s_\n\n", strings.Join(cats, ", "))
	}
	if SafeLink(post.Link) {
		fmt.Fprintf(b, "[View on Threads](<%s>)\n\n", strings.NewReplacer("<", "%3C", ">", "%3E").Replace(strings.TrimSpace(post.Link)))
	}
}

// RenderBars draws the importance chart as fixed-width text rows.
func RenderBars(bars []Bar) string {
	lines := make([]string, 0, len(bars))
	for _, bar := range bars {
		filled := int(math.Round(math.Max(0, math.Min(bar.Importance, 10)) / 10 * barCells))
		author := runewidth.FillRight(sanitizer.SingleLine(bar.Author), barAuthorColumns)
		lines = append(lines, fmt.Sprintf("%s %s%s %s",
			author,
			strings.Repeat("█", filled),
			strings.Repeat("░", barCells-filled),
			FormatScore(bar.Importance),
		))
	}
	return strings.Join(lines, "\n")
}

// FormatScore prints a score without trailing zeros.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func clampRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
