package report

import (
	"fmt"
	"net/url"
	"strings"

	"threadwatch/internal/types"

	"github.com/charmbracelet/lipgloss"
)

var palette = []lipgloss.Color{
	"#3B82F6",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#EC4899",
	"#06B6D4",
	"#84CC16",
}

// CategoryColor picks the chart color for the i-th category, cycling
// through a fixed palette.
func CategoryColor(i int) lipgloss.Color {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

type Slice struct {
	types.CategoryStat
	Color lipgloss.Color
	Label string
}

// CategorySlices pairs each category with its color and label. Percentages
// are passed through as received.
func CategorySlices(stats []types.CategoryStat) []Slice {
	out := make([]Slice, 0, len(stats))
	for i, stat := range stats {
		out = append(out, Slice{
			CategoryStat: stat,
			Color:        CategoryColor(i),
			Label:        fmt.Sprintf("%s (%.0f%%)", stat.Name, stat.Percentage),
		})
	}
	return out
}

type StatRow struct {
	Label string
	Value int
}

// StatRows lists the pipeline counters in display order. It returns nil
// when the run has no stats yet.
func StatRows(stats *types.PipelineStats) []StatRow {
	if stats == nil {
		return nil
	}
	return []StatRow{
		{Label: "Searched", Value: stats.TotalSearched},
		{Label: "Hard Filtered", Value: stats.FilteredByHardRules},
		{Label: "Deduped", Value: stats.FilteredByDedup},
		{Label: "AI Filtered", Value: stats.FilteredByAI},
		{Label: "Valid", Value: stats.ValidCount},
	}
}

func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

// SafeLink reports whether link may be rendered as something navigable.
// Only absolute http and https URLs qualify.
func SafeLink(link string) bool {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil || parsed.Host == "" {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
