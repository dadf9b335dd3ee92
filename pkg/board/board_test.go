package board

import (
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

func TestValidatePosition(t *testing.T) {
	tests := []struct {
		name    string
		pos     model.Position
		wantErr bool
	}{
		{"start sentinel", model.StartPosition, false},
		{"start fen", StartFEN, false},
		{"after e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", false},
		{"empty", "", true},
		{"garbage", "not a fen", true},
		{"truncated", "rnbqkbnr/pppppppp/8/8", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePosition(tt.pos)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecode_WhiteOrientation(t *testing.T) {
	g, err := Decode(model.StartPosition, model.OrientationWhite)
	require.NoError(t, err)

	assert.True(t, g.WhiteToMove)
	assert.Equal(t, "a8", g.Squares[0][0].Name)
	assert.Equal(t, "h1", g.Squares[7][7].Name)
	assert.Equal(t, chess.BlackRook, g.Squares[0][0].Piece)
	assert.Equal(t, chess.WhiteKing, g.Squares[7][4].Piece)
	assert.True(t, g.Squares[4][4].Empty())
	assert.False(t, g.Squares[7][0].Light, "a1 is dark")
	assert.True(t, g.Squares[7][7].Light, "h1 is light")
	assert.Equal(t, 8, g.Rank(0))
	assert.Equal(t, "a", g.Files()[0])
}

func TestDecode_BlackOrientation(t *testing.T) {
	g, err := Decode(model.StartPosition, model.OrientationBlack)
	require.NoError(t, err)

	assert.Equal(t, "h1", g.Squares[0][0].Name)
	assert.Equal(t, "a8", g.Squares[7][7].Name)
	assert.Equal(t, chess.WhiteRook, g.Squares[0][0].Piece)
	assert.True(t, g.Squares[0][0].White())
	assert.Equal(t, 1, g.Rank(0))
	assert.Equal(t, "h", g.Files()[0])
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode("xyz", model.OrientationWhite)
	assert.Error(t, err)
}

func TestParseMove(t *testing.T) {
	from, to, err := ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2", from)
	assert.Equal(t, "e4", to)

	from, to, err = ParseMove(" E7E8Q ")
	require.NoError(t, err)
	assert.Equal(t, "e7", from)
	assert.Equal(t, "e8q", to)

	for _, bad := range []string{"", "e2", "e2e9", "i2e4", "e7e8k", "Nf3"} {
		_, _, err := ParseMove(bad)
		assert.Error(t, err, bad)
	}
}
