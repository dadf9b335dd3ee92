package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES - For split view layouts
// ══════════════════════════════════════════════════════════════════════════════

// PanelStyle is the border style of an unfocused panel
func PanelStyle(t Theme) lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
}

// FocusedPanelStyle is the border style of the panel holding the keyboard
func FocusedPanelStyle(t Theme) lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary)
}

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// RenderConnectionBadge returns a colored marker for the stream state
func RenderConnectionBadge(state session.State, t Theme) string {
	var fg lipgloss.AdaptiveColor
	switch state {
	case session.StateOpen:
		fg = t.Open
	case session.StateConnecting:
		fg = t.Info
	case session.StateClosing:
		fg = t.Warning
	default:
		fg = t.Danger
	}
	return t.Renderer.NewStyle().
		Foreground(fg).
		Bold(true).
		Render("● " + strings.ToUpper(state.String()))
}

// RenderTab renders one side-panel tab header
func RenderTab(label string, active bool, t Theme) string {
	style := t.Renderer.NewStyle().Padding(0, 1)
	if active {
		return style.Bold(true).Foreground(t.Primary).Underline(true).Render(label)
	}
	return style.Foreground(t.Secondary).Render(label)
}

// RenderKeyHint renders "[k] label" the way every footer does
func RenderKeyHint(key, label string, t Theme) string {
	k := t.Renderer.NewStyle().Foreground(t.Primary).Bold(true).Render("[" + key + "]")
	return k + " " + t.Renderer.NewStyle().Foreground(t.Subtext).Render(label)
}

// ══════════════════════════════════════════════════════════════════════════════
// METRIC VISUALIZATION - Mini-bars
// ══════════════════════════════════════════════════════════════════════════════

// RenderMiniBar renders a mini horizontal bar for a value between 0 and 1
func RenderMiniBar(value float64, width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	filled := int(value*float64(width) + 0.5)
	if filled > width {
		filled = width
	}

	// Choose color based on value
	var barColor lipgloss.AdaptiveColor
	if value >= 0.75 {
		barColor = t.Open
	} else if value >= 0.5 {
		barColor = t.Warning
	} else if value >= 0.25 {
		barColor = t.Info
	} else {
		barColor = t.Secondary
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return t.Renderer.NewStyle().Foreground(barColor).Render(bar)
}

// RenderStatLine renders "  label      value" with an aligned label column
func RenderStatLine(label string, value any, t Theme) string {
	l := t.Renderer.NewStyle().Foreground(t.Subtext).Width(16).Render(label)
	return "  " + l + fmt.Sprint(value)
}

// ══════════════════════════════════════════════════════════════════════════════
// DIVIDERS AND SEPARATORS
// ══════════════════════════════════════════════════════════════════════════════

// RenderDivider renders a horizontal divider line
func RenderDivider(width int, t Theme) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}
