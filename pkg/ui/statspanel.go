package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/analysis"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// StatsData is everything the Stats tab shows
type StatsData struct {
	Eval    analysis.EvalSummary
	Tree    analysis.TreeStats
	Session *model.SessionSummary
}

// RenderStatsHeaderBox renders a consistent header box for stats panels.
// typeLabel should be "SESSION:", "TREE:", etc.
func RenderStatsHeaderBox(title, typeLabel string, width int, theme Theme, color lipgloss.TerminalColor) []string {
	headerStyle := theme.Renderer.NewStyle().Bold(true).Foreground(color)

	boxWidth := width - StatsPanelPadding
	if boxWidth < MinBoxWidth {
		boxWidth = MinBoxWidth
	}

	maxTitleLen := boxWidth - len(typeLabel) - 4
	if maxTitleLen < 5 {
		maxTitleLen = 5
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-1] + "…"
	}

	topBorder := "╔" + strings.Repeat("═", boxWidth-2) + "╗"
	bottomBorder := "╚" + strings.Repeat("═", boxWidth-2) + "╝"

	contentWidth := boxWidth - 4 // Account for "║ " and " ║"
	titleContent := fmt.Sprintf("%s %s", typeLabel, title)
	if len(titleContent) > contentWidth {
		titleContent = titleContent[:contentWidth]
	}
	titleLine := fmt.Sprintf("║ %-*s║", boxWidth-3, titleContent)

	return []string{
		headerStyle.Render(topBorder),
		headerStyle.Render(titleLine),
		headerStyle.Render(bottomBorder),
	}
}

// RenderStatsPanel renders the Stats tab: the evaluation history of this
// session and the shape of the current move tree.
func RenderStatsPanel(d StatsData, width int, t Theme) string {
	var lines []string

	title := "this session"
	if d.Session != nil && d.Session.ClientID != "" {
		title = d.Session.ClientID
		if len(title) > 8 {
			title = title[:8]
		}
	}
	lines = append(lines, RenderStatsHeaderBox(title, "SESSION:", width, t, t.Primary)...)

	e := d.Eval
	if e.Count == 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).
			Render("  No evaluations yet"))
	} else {
		lines = append(lines,
			RenderStatLine("Evaluations", e.Count, t),
			RenderStatLine("Last", fmt.Sprintf("%+.2f", e.Last), t),
			RenderStatLine("Mean", fmt.Sprintf("%+.2f ± %.2f", e.Mean, e.StdDev), t),
			RenderStatLine("Range", fmt.Sprintf("%+.2f .. %+.2f", e.Min, e.Max), t),
			RenderStatLine("Largest swing", fmt.Sprintf("%.2f", e.LargestSwing), t),
			RenderStatLine("Trend", e.Trend, t),
		)
		barWidth := width - 24
		if barWidth > 20 {
			barWidth = 20
		}
		lines = append(lines, "  "+t.Renderer.NewStyle().Foreground(t.Subtext).Width(16).Render("White share")+
			RenderMiniBar(analysis.WhiteShare(e.Last), barWidth, t))
	}
	if d.Session != nil {
		lines = append(lines,
			RenderStatLine("Moves sent", d.Session.Moves, t),
			RenderStatLine("Errors", d.Session.Errors, t),
		)
	}

	lines = append(lines, "")
	lines = append(lines, RenderStatsHeaderBox("move tree", "TREE:", width, t, t.Secondary)...)
	tr := d.Tree
	if tr.Moves == 0 {
		lines = append(lines, t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).
			Render("  No moves yet"))
	} else {
		lines = append(lines,
			RenderStatLine("Moves", tr.Moves, t),
			RenderStatLine("Main line", tr.MainLine, t),
			RenderStatLine("Variations", tr.Variations, t),
			RenderStatLine("Deepest ply", tr.MaxDepth, t),
			RenderStatLine("Widest branch", tr.MaxBranching, t),
		)
	}
	return strings.Join(lines, "\n")
}
