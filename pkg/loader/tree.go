package loader

import (
	"fmt"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/movetree"
)

// LoadTree builds the move tree of game index in a PGN file, identities
// assigned, the same way the client builds trees pushed by the server.
func LoadTree(path string, index int) (*model.MoveNode, *Game, error) {
	games, err := LoadGames(path)
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(games) {
		return nil, nil, fmt.Errorf("game %d not found: %s holds %d game(s)", index+1, path, len(games))
	}
	g := games[index]
	tree, err := movetree.Build([]byte(g.Movetext))
	if err != nil {
		return nil, nil, fmt.Errorf("build move tree: %w", err)
	}
	return tree, &g, nil
}
