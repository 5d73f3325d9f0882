package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"threadwatch/internal/history"
	"threadwatch/internal/monitor"
	"threadwatch/internal/report"
	"threadwatch/internal/sanitizer"
	"threadwatch/internal/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (m Model) View() string {
	if !m.ready {
		return "Loading threadwatch..."
	}
	sections := []string{m.renderHeader()}
	switch m.mode {
	case viewHistory:
		sections = append(sections, m.renderHistory())
	case viewReport:
		sections = append(sections, m.reportView.View())
	default:
		sections = append(sections, m.renderMonitor()...)
	}
	sections = append(sections, m.renderStatusLine(), helpStyle.Render(m.helpText()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := headerStyle.Render("threadwatch")
	if m.version != "" {
		title += subHeaderStyle.Render(m.version)
	}
	modes := []viewMode{viewMonitor, viewHistory}
	if m.reportID != "" {
		modes = append(modes, viewReport)
	}
	tabs := make([]string, 0, len(modes))
	for _, mode := range modes {
		if mode == m.mode {
			tabs = append(tabs, activeTabStyle.Render(mode.String()))
			continue
		}
		tabs = append(tabs, tabStyle.Render(mode.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", strings.Join(tabs, ""))
}

func (m Model) renderMonitor() []string {
	out := []string{
		panelStyle.Width(max(m.width-2, 20)).Render(panelTitleStyle.Render("Keywords") + "\n" + m.keywordInput.View()),
		m.renderSessionLine(),
	}
	if msg := m.errorMessage(); msg != "" {
		out = append(out, errorPanelStyle.Width(max(m.width-2, 20)).Render(sanitizer.SingleLine(msg)))
	}
	title := panelTitleStyle.Render(fmt.Sprintf("Progress (%d events)", len(m.session.Events)))
	out = append(out, panelStyle.Render(title+"\n"+m.progressView.View()))
	return out
}

func (m Model) renderSessionLine() string {
	parts := []string{statusBadge(m.session.Status)}
	if m.session.Status == monitor.StatusConnecting || m.session.Status == monitor.StatusRunning || m.starting {
		parts = append(parts, m.spinner.View())
	}
	if m.session.RunID != "" {
		parts = append(parts, subHeaderStyle.Render("run "+m.session.RunID))
	}
	if m.session.Status == monitor.StatusCompleted {
		parts = append(parts, successStyle.Render("ctrl+o view report"))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderStatusLine() string {
	if m.mode != viewMonitor && m.errorText != "" {
		return errorStyle.Render(sanitizer.SingleLine(m.errorText))
	}
	return statusStyle.Render(m.statusText)
}

func (m Model) helpText() string {
	switch m.mode {
	case viewHistory:
		return "up/down select · left/right page · enter open report · y copy id · r refresh · tab switch · q quit"
	case viewReport:
		return "up/down scroll · esc back · r reload · y copy id · tab switch · q quit"
	default:
		help := "enter start · tab history · ctrl+c quit"
		if m.session.Status != monitor.StatusIdle {
			help = "enter start · ctrl+r reset · ctrl+y copy id · tab history · ctrl+c quit"
		}
		return help
	}
}

func (m *Model) refreshProgressView() {
	atBottom := m.progressView.AtBottom()
	if len(m.session.Events) == 0 {
		m.progressView.SetContent(helpStyle.Render("No progress yet."))
		return
	}
	lines := make([]string, 0, len(m.session.Events))
	for i, ev := range m.session.Events {
		lines = append(lines, renderEventLine(i+1, ev, m.progressView.Width))
	}
	m.progressView.SetContent(strings.Join(lines, "\n"))
	if atBottom {
		m.progressView.GotoBottom()
	}
}

func renderEventLine(n int, ev types.ProgressEvent, width int) string {
	kind := fmt.Sprintf("%-16s", string(ev.Kind))
	style := eventKindStyle
	switch ev.Kind {
	case types.EventCompleted:
		style = successStyle
	case types.EventError:
		style = errorStyle
	}
	prefix := helpStyle.Render(fmt.Sprintf("%3d ", n)) + style.Render(kind) + " "
	text := sanitizer.SingleLine(ev.Describe())
	if room := width - 21; room > 0 {
		text = runewidth.Truncate(text, room, "…")
	}
	return prefix + text
}

func (m *Model) refreshReportView() {
	switch {
	case m.reportLoading:
		m.reportView.SetContent(m.spinner.View() + " Loading report " + report.ShortID(m.reportID) + "...")
	case m.reportErr != nil:
		m.reportView.SetContent(errorStyle.Render("Could not load report: " + sanitizer.SingleLine(m.reportErr.Error())))
	case m.report == nil:
		m.reportView.SetContent(helpStyle.Render("No report selected."))
	default:
		width := max(m.reportView.Width-2, 20)
		doc := report.Document(m.report, report.Options{
			TopN:         m.cfg.TopN(),
			Posts:        true,
			ContentRunes: reportContentRunes,
		})
		content := report.RenderMarkdown(doc, width, m.dark)
		if strip := categoryStrip(report.CategorySlices(m.report.CategoryStats), width); strip != "" {
			content = strip + "\n\n" + content
		}
		m.reportView.SetContent(content)
	}
}

// categoryStrip draws the category breakdown as one proportional bar with a
// legend underneath.
func categoryStrip(slices []report.Slice, width int) string {
	if len(slices) == 0 {
		return ""
	}
	var bar strings.Builder
	legend := make([]string, 0, len(slices))
	for _, slice := range slices {
		style := lipgloss.NewStyle().Foreground(slice.Color)
		cells := int(math.Round(slice.Percentage / 100 * float64(width)))
		if cells < 1 && slice.Count > 0 {
			cells = 1
		}
		bar.WriteString(style.Render(strings.Repeat("█", cells)))
		label := fmt.Sprintf("%s (%.0f%%)", sanitizer.SingleLine(slice.Name), slice.Percentage)
		legend = append(legend, style.Render("■")+" "+label)
	}
	return panelTitleStyle.Render("Categories") + "\n" + bar.String() + "\n" + strings.Join(legend, "  ")
}

func (m Model) renderHistory() string {
	snap := m.pager.Snapshot()
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Run History"))
	if snap.Loading {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")
	if snap.Err != nil {
		b.WriteString(errorStyle.Render("Could not load history: "+sanitizer.SingleLine(snap.Err.Error())) + "\n")
	}
	if len(snap.Runs) == 0 && !snap.Loading && snap.Err == nil {
		b.WriteString(helpStyle.Render("No runs yet. Start one from the Monitor tab.") + "\n")
	}
	b.WriteString(subHeaderStyle.Render(fmt.Sprintf("  %-11s %-10s %-36s %6s  %s", "ID", "STATUS", "KEYWORDS", "POSTS", "CREATED")) + "\n")
	for i, run := range snap.Runs {
		line := historyLine(run)
		if i == m.historyCursor {
			b.WriteString(historySelectedLineStyle.Render("> "+line) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString(historyFooter(snap))
	return b.String()
}

func historyLine(run types.RunSummary) string {
	posts := "-"
	if run.Stats != nil {
		posts = strconv.Itoa(run.Stats.ValidCount)
	}
	keywords := make([]string, 0, len(run.Keywords))
	for _, kw := range run.Keywords {
		keywords = append(keywords, sanitizer.SingleLine(kw))
	}
	summary := runewidth.FillRight(runewidth.Truncate(strings.Join(keywords, ", "), 36, "…"), 36)
	return fmt.Sprintf("%-11s %-10s %s %6s  %s", report.ShortID(run.ID), run.Status, summary, posts, run.CreatedAt)
}

func historyFooter(snap history.Snapshot) string {
	pages := snap.TotalPages()
	if pages == 0 {
		return helpStyle.Render("Page 1 of 1")
	}
	return helpStyle.Render(fmt.Sprintf("Page %d of %d (%d total runs)", snap.Page, pages, snap.Total))
}
