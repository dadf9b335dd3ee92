package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/chess_viewer/pkg/analysis"
	"github.com/Dicklesworthstone/chess_viewer/pkg/board"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// squareWidth is the number of cells one square takes on screen.
const squareWidth = 3

// BoardWidth is the rendered width of the board including the rank column.
const BoardWidth = 8*squareWidth + 2

// RenderBoard draws the position as seen from o. A position that cannot be
// decoded renders as a one-line notice; the store never holds one, so this
// only shows up if a caller passes raw input.
func RenderBoard(p model.Position, o model.Orientation, t Theme) string {
	grid, err := board.Decode(p, o)
	if err != nil {
		return t.Renderer.NewStyle().Foreground(t.Danger).Render("invalid position")
	}

	coord := t.Renderer.NewStyle().Foreground(t.Secondary)
	var b strings.Builder
	for row := 0; row < 8; row++ {
		b.WriteString(coord.Render(fmt.Sprintf("%d ", grid.Rank(row))))
		for col := 0; col < 8; col++ {
			b.WriteString(renderSquare(grid.Squares[row][col], t))
		}
		b.WriteString("\n")
	}

	b.WriteString("  ")
	for _, f := range grid.Files() {
		b.WriteString(coord.Render(" " + f + " "))
	}
	b.WriteString("\n")

	side := "Black to move"
	if grid.WhiteToMove {
		side = "White to move"
	}
	b.WriteString(t.Renderer.NewStyle().Foreground(t.Subtext).Italic(true).Render(side))
	return b.String()
}

func renderSquare(sq board.Square, t Theme) string {
	bg := t.DarkSquare
	if sq.Light {
		bg = t.LightSquare
	}
	style := t.Renderer.NewStyle().Background(bg).Width(squareWidth).Align(lipgloss.Center)
	if sq.Empty() {
		return style.Render(" ")
	}
	fg := t.BlackPiece
	if sq.White() {
		fg = t.WhitePiece
	}
	return style.Foreground(fg).Bold(true).Render(sq.Symbol())
}

// FormatEvaluation returns the score to two decimals, or "Loading..." when
// the server has not sent one yet.
func FormatEvaluation(score *float64) string {
	if score == nil {
		return "Loading..."
	}
	return fmt.Sprintf("%.2f", *score)
}

// RenderEvalBar draws a horizontal evaluation bar of the given width: the
// filled part is white's share. The score and a verbal assessment follow
// underneath.
func RenderEvalBar(score *float64, width int, t Theme) string {
	if width < 4 {
		width = 4
	}
	label := t.Renderer.NewStyle().Bold(true).Foreground(t.Primary).Render("Eval " + FormatEvaluation(score))
	if score == nil {
		empty := t.Renderer.NewStyle().Foreground(t.Border).Render(strings.Repeat("░", width))
		return empty + "\n" + label
	}

	filled := int(analysis.WhiteShare(*score)*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	white := t.Renderer.NewStyle().Foreground(t.WhitePiece).Render(strings.Repeat("█", filled))
	black := t.Renderer.NewStyle().Foreground(t.Secondary).Render(strings.Repeat("█", width-filled))
	verdict := t.Renderer.NewStyle().Foreground(t.Subtext).Render(analysis.Advantage(*score))
	return white + black + "\n" + label + "  " + verdict
}
