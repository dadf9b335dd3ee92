package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func TestHelpOverlay_ToggleAndRender(t *testing.T) {
	help := NewHelpOverlayModel(DefaultTheme(lipgloss.DefaultRenderer()), "notty")
	help.SetSize(100, 60)

	if help.View() != "" {
		t.Error("Expected hidden overlay to render nothing")
	}
	help.Toggle()
	view := help.View()
	for _, want := range []string{"flip the board", "new game from PGN", "zoom"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected help to mention %q", want)
		}
	}

	help, _ = help.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if help.IsVisible() {
		t.Error("Expected ? to close help")
	}
}

func TestRenderMarkdown_FallsBackOnBadStyle(t *testing.T) {
	out := renderMarkdown("# title", "no-such-style", 40)
	if !strings.Contains(out, "title") {
		t.Errorf("Expected the raw text back, got %q", out)
	}
}

func TestPGNInput_SubmitAndCancel(t *testing.T) {
	in := NewPGNInputModel(DefaultTheme(lipgloss.DefaultRenderer()))

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if in.IsSubmitted() {
		t.Error("Expected an empty game not to submit")
	}

	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("  1. d4 d5  ")})
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	if !in.IsSubmitted() || in.PGN() != "1. d4 d5" {
		t.Errorf("Expected trimmed game to be submitted, got %q", in.PGN())
	}

	in.Reset()
	if in.IsSubmitted() || in.PGN() != "" {
		t.Error("Expected reset to clear the result")
	}
	in, _ = in.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !in.IsCancelled() {
		t.Error("Expected esc to cancel")
	}
}

func TestStatsPanel(t *testing.T) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	empty := RenderStatsPanel(StatsData{}, 50, theme)
	if !strings.Contains(empty, "No evaluations yet") || !strings.Contains(empty, "No moves yet") {
		t.Errorf("Expected empty notices, got %q", empty)
	}

	data := StatsData{}
	data.Eval.Count = 3
	data.Eval.Last = 0.75
	data.Eval.Trend = "white"
	data.Tree.Moves = 3
	data.Tree.Variations = 1
	out := RenderStatsPanel(data, 50, theme)
	for _, want := range []string{"Evaluations", "+0.75", "white", "Variations"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected stats to contain %q", want)
		}
	}
}
