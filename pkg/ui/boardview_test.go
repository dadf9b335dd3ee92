package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

func TestRenderBoard_Orientation(t *testing.T) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	tests := []struct {
		name        string
		orientation model.Orientation
		firstRank   string
		files       string
	}{
		{"white at the bottom", model.OrientationWhite, "8 ", " a  b  c  d  e  f  g  h "},
		{"black at the bottom", model.OrientationBlack, "1 ", " h  g  f  e  d  c  b  a "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderBoard(model.StartPosition, tt.orientation, theme)
			lines := strings.Split(out, "\n")
			if !strings.HasPrefix(lines[0], tt.firstRank) {
				t.Errorf("Expected first row to start with %q, got %q", tt.firstRank, lines[0])
			}
			if !strings.Contains(lines[8], tt.files) {
				t.Errorf("Expected file row %q, got %q", tt.files, lines[8])
			}
		})
	}
}

func TestRenderBoard_PiecesAndSideToMove(t *testing.T) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	out := RenderBoard(afterE4, model.OrientationWhite, theme)

	if !strings.Contains(out, "Black to move") {
		t.Error("Expected black to move after 1. e4")
	}
	if strings.Count(out, "♙") != 8 || strings.Count(out, "♟") != 8 {
		t.Error("Expected eight pawns per side")
	}
}

func TestRenderBoard_InvalidPosition(t *testing.T) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())
	if out := RenderBoard("not a fen", model.OrientationWhite, theme); !strings.Contains(out, "invalid position") {
		t.Errorf("Expected invalid notice, got %q", out)
	}
}

func TestFormatEvaluation(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "Loading..."},
		{score(0), "0.00"},
		{score(1.234), "1.23"},
		{score(-0.5), "-0.50"},
	}
	for _, tt := range tests {
		if got := FormatEvaluation(tt.in); got != tt.want {
			t.Errorf("FormatEvaluation() = %q, want %q", got, tt.want)
		}
	}
}

func TestRenderEvalBar(t *testing.T) {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	loading := RenderEvalBar(nil, 10, theme)
	if !strings.Contains(loading, "Loading...") || !strings.Contains(loading, strings.Repeat("░", 10)) {
		t.Errorf("Expected an empty bar while loading, got %q", loading)
	}

	even := 0.0
	out := RenderEvalBar(&even, 10, theme)
	if strings.Count(out, "█") != 10 {
		t.Errorf("Expected a full-width bar, got %q", out)
	}
	if !strings.Contains(out, "Equal") {
		t.Errorf("Expected an equal verdict, got %q", out)
	}
}
