package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme carries the renderer and the adaptive colors every view draws with.
// Views never reach for the package-level palette directly so that tests can
// hand them a plain renderer.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	// Semantic colors
	Open    lipgloss.AdaptiveColor // connected, good news
	Warning lipgloss.AdaptiveColor
	Danger  lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Board colors
	LightSquare lipgloss.AdaptiveColor
	DarkSquare  lipgloss.AdaptiveColor
	WhitePiece  lipgloss.AdaptiveColor
	BlackPiece  lipgloss.AdaptiveColor

	Base lipgloss.Style
}

// DefaultTheme builds the Dracula-flavoured theme on the given renderer
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#5A6A94", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#C0C0C0", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0F0", Dark: "#44475A"},

		Open:    lipgloss.AdaptiveColor{Light: "#1E8E3E", Dark: "#50FA7B"},
		Warning: lipgloss.AdaptiveColor{Light: "#B35C00", Dark: "#FFB86C"},
		Danger:  lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF5555"},
		Info:    lipgloss.AdaptiveColor{Light: "#00838F", Dark: "#8BE9FD"},

		LightSquare: lipgloss.AdaptiveColor{Light: "#F0D9B5", Dark: "#B5A282"},
		DarkSquare:  lipgloss.AdaptiveColor{Light: "#B58863", Dark: "#6F5138"},
		WhitePiece:  lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"},
		BlackPiece:  lipgloss.AdaptiveColor{Light: "#000000", Dark: "#101010"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1E1F29", Dark: "#F8F8F2"})
	return t
}
