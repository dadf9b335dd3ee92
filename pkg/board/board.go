// Package board decodes positions received from the server into something a
// view can draw. Legality is the server's business; this package only checks
// that a position is a well-formed FEN and that a move names two squares.
package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// StartFEN is the standard initial position the "start" sentinel stands for.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ValidatePosition returns nil if p is the start sentinel or a decodable FEN.
func ValidatePosition(p model.Position) error {
	_, err := decode(p)
	return err
}

func decode(p model.Position) (*chess.Position, error) {
	fen := strings.TrimSpace(string(p))
	if fen == "" {
		return nil, fmt.Errorf("empty position")
	}
	if p.IsStart() {
		fen = StartFEN
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return chess.NewGame(opt).Position(), nil
}

// Square is one cell of a drawn board.
type Square struct {
	Name  string // "e4"
	Piece chess.Piece
	Light bool
}

// Empty returns true if no piece stands on the square
func (s Square) Empty() bool {
	return s.Piece == chess.NoPiece
}

// Symbol returns the piece glyph, or "" for an empty square.
func (s Square) Symbol() string {
	if s.Empty() {
		return ""
	}
	return s.Piece.String()
}

// White returns true if the piece on the square is white
func (s Square) White() bool {
	return s.Piece.Color() == chess.White
}

// Grid is the board as seen from one side: row 0 is the rank farthest from
// the viewer, column 0 the viewer's left-hand file.
type Grid struct {
	Squares     [8][8]Square
	Orientation model.Orientation
	WhiteToMove bool
}

// Files returns the file letters left to right for the grid's orientation
func (g Grid) Files() []string {
	files := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	if g.Orientation == model.OrientationBlack {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	return files
}

// Rank returns the rank number shown on row r
func (g Grid) Rank(row int) int {
	if g.Orientation == model.OrientationBlack {
		return row + 1
	}
	return 8 - row
}

// Decode lays out position p for a viewer playing orientation o.
func Decode(p model.Position, o model.Orientation) (Grid, error) {
	pos, err := decode(p)
	if err != nil {
		return Grid{}, err
	}
	if !o.IsValid() {
		o = model.OrientationWhite
	}
	b := pos.Board()
	g := Grid{Orientation: o, WhiteToMove: pos.Turn() == chess.White}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			file, rank := col, 7-row
			if o == model.OrientationBlack {
				file, rank = 7-col, row
			}
			sq := chess.NewSquare(chess.File(file), chess.Rank(rank))
			g.Squares[row][col] = Square{
				Name:  sq.String(),
				Piece: b.Piece(sq),
				Light: (file+rank)%2 == 1,
			}
		}
	}
	return g, nil
}

// ParseMove splits a coordinate move such as "e2e4" (or "e7e8q") into its
// source and target. A promotion piece stays on the target ("e8q").
func ParseMove(s string) (from, to string, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return "", "", fmt.Errorf("move %q: want source and target squares like e2e4", s)
	}
	from, to = s[0:2], s[2:4]
	if !isSquare(from) || !isSquare(to) {
		return "", "", fmt.Errorf("move %q: not a square pair", s)
	}
	if len(s) == 5 && !strings.ContainsRune("qrbn", rune(s[4])) {
		return "", "", fmt.Errorf("move %q: bad promotion piece", s)
	}
	return from, to + s[4:], nil
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
