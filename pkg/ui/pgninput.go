package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pgnCharLimit bounds a pasted game. Long annotated games run to a few
// tens of kilobytes.
const pgnCharLimit = 64 * 1024

// PGNInputModel is the "new game" modal: a text area the user pastes a PGN
// into before it is posted to the server.
type PGNInputModel struct {
	textarea textarea.Model
	width    int
	height   int
	theme    Theme

	// Result
	submitted bool
	cancelled bool
	pgn       string
}

// NewPGNInputModel creates a new PGN entry modal
func NewPGNInputModel(theme Theme) PGNInputModel {
	ta := textarea.New()
	ta.Placeholder = "[Event \"...\"]\n\n1. e4 e5 2. Nf3 ..."
	ta.Focus()
	ta.CharLimit = pgnCharLimit
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(8)

	return PGNInputModel{
		textarea: ta,
		theme:    theme,
	}
}

// Init implements tea.Model
func (m PGNInputModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model
func (m PGNInputModel) Update(msg tea.Msg) (PGNInputModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.cancelled = true
			return m, nil
		case "ctrl+s", "ctrl+j":
			// ctrl+j is the fallback for terminals that swallow ctrl+s
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				return m, nil
			}
			m.submitted = true
			m.pgn = text
			return m, nil
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PGNInputModel) View() string {
	var b strings.Builder

	width := 60
	if m.width > 0 && m.width < 70 {
		width = m.width - 10
	}

	titleStyle := m.theme.Renderer.NewStyle().
		Bold(true).
		Foreground(m.theme.Primary).
		Width(width).
		Align(lipgloss.Center)
	b.WriteString(titleStyle.Render("New Game"))
	b.WriteString("\n\n")

	promptStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Subtext)
	b.WriteString(promptStyle.Render("Paste a game in PGN:"))
	b.WriteString("\n\n")

	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")

	hintStyle := m.theme.Renderer.NewStyle().Faint(true)
	b.WriteString(hintStyle.Render("[Ctrl+S/Ctrl+J] Load  [Esc] Cancel"))

	boxStyle := m.theme.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Border).
		Padding(1, 2).
		Width(width)

	return boxStyle.Render(b.String())
}

// SetSize sets the modal dimensions
func (m *PGNInputModel) SetSize(width, height int) {
	m.width = width
	m.height = height

	taWidth := width - 20
	if taWidth < 30 {
		taWidth = 30
	}
	if taWidth > 60 {
		taWidth = 60
	}
	m.textarea.SetWidth(taWidth)

	taHeight := height - 16
	if taHeight < 4 {
		taHeight = 4
	}
	if taHeight > 16 {
		taHeight = 16
	}
	m.textarea.SetHeight(taHeight)
}

// IsSubmitted returns true if the user submitted a game
func (m PGNInputModel) IsSubmitted() bool {
	return m.submitted
}

// IsCancelled returns true if the user cancelled
func (m PGNInputModel) IsCancelled() bool {
	return m.cancelled
}

// PGN returns the submitted game text
func (m PGNInputModel) PGN() string {
	return m.pgn
}

// SetValue pre-fills the text area
func (m *PGNInputModel) SetValue(s string) {
	m.textarea.SetValue(s)
}

// Reset prepares the modal for reuse
func (m *PGNInputModel) Reset() {
	m.submitted = false
	m.cancelled = false
	m.pgn = ""
	m.textarea.Reset()
	m.textarea.Focus()
}
