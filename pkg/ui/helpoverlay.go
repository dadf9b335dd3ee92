package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const helpMarkdown = `# chessview

## Board
| key | action |
|-----|--------|
| ` + "`m`" + ` | enter a move (uci, e.g. e2e4) |
| ` + "`←` / `h`" + ` | navigate backward |
| ` + "`→` / `l`" + ` | navigate forward |
| ` + "`f`" + ` | flip the board |
| ` + "`r`" + ` | reset the game |
| ` + "`n`" + ` | new game from PGN |
| ` + "`y`" + ` | copy the position (FEN) |

## Side panel
| key | action |
|-----|--------|
| ` + "`tab`" + ` | next tab (Engine, Game Tree, Stats) |
| ` + "`1` `2` `3`" + ` | jump to a tab |

## Game tree
| key | action |
|-----|--------|
| ` + "`w` `a` `s` `d`" + ` | pan |
| ` + "`+` / `-`" + ` | zoom about the centre |
| ` + "`0`" + ` | reset the view |
| ` + "`/`" + ` | find a move |
| ` + "`o`" + ` | toggle orientation |

## General
| key | action |
|-----|--------|
| ` + "`?`" + ` | toggle this help |
| ` + "`q` / `ctrl+c`" + ` | quit |
`

// HelpOverlayModel shows the keyboard shortcuts, rendered from markdown
type HelpOverlayModel struct {
	visible  bool
	width    int
	height   int
	theme    Theme
	style    string
	viewport viewport.Model
	rendered string
}

// NewHelpOverlayModel creates a new help overlay. style is a glamour
// standard style name ("dark", "light", "notty").
func NewHelpOverlayModel(theme Theme, style string) HelpOverlayModel {
	if style == "" {
		style = "dark"
	}
	return HelpOverlayModel{
		theme:    theme,
		style:    style,
		viewport: viewport.New(60, 20),
	}
}

// Toggle toggles visibility
func (m *HelpOverlayModel) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.viewport.GotoTop()
	}
}

// IsVisible returns true if overlay is showing
func (m HelpOverlayModel) IsVisible() bool {
	return m.visible
}

// SetSize sets dimensions and re-renders the markdown for the new width
func (m *HelpOverlayModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	h := height - 6
	if h < MinContentHeight {
		h = MinContentHeight
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.rendered = renderMarkdown(helpMarkdown, m.style, w)
	m.viewport.SetContent(m.rendered)
}

// renderMarkdown falls back to the raw text if glamour cannot render
func renderMarkdown(md, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Update handles input. Scroll keys move the viewport; esc, q and ? close.
func (m HelpOverlayModel) Update(msg tea.Msg) (HelpOverlayModel, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "?":
			m.visible = false
			return m, nil
		}
	}
	if m.rendered == "" {
		m.SetSize(m.width, m.height)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help overlay
func (m HelpOverlayModel) View() string {
	if !m.visible {
		return ""
	}
	if m.rendered == "" {
		m.SetSize(m.width, m.height)
	}

	hint := m.theme.Renderer.NewStyle().Faint(true).Italic(true).
		Render("[↑/↓] scroll  [esc/?] close")

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(0, 1)

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), hint))
}
