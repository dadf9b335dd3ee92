package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dicklesworthstone/chess_viewer/pkg/loader"
)

const twoGames = `[Event "Casual"]
[White "Anderssen"]
[Black "Kieseritzky"]
[Result "1-0"]

1. e4 e5 2. f4 exf4 (2... d5) 3. Bc4 Qh4+
{ the immortal game } 1-0

[Event "Second"]
[Broken tag
[White "A"]
[Black "B"]

1. d4 d5 *
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadGames(t *testing.T) {
	path := writeFile(t, "games.pgn", "\xef\xbb\xbf"+twoGames)

	games, err := loader.LoadGames(path)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if got := games[0].Title(); got != "Anderssen - Kieseritzky" {
		t.Errorf("title = %q", got)
	}
	if !strings.Contains(games[0].Movetext, "the immortal game") {
		t.Errorf("movetext lost its comment: %q", games[0].Movetext)
	}
	if games[1].Tags["Event"] != "Second" || games[1].Tags["White"] != "A" {
		t.Errorf("second game tags = %v", games[1].Tags)
	}
	if games[1].Movetext != "1. d4 d5 *" {
		t.Errorf("second movetext = %q", games[1].Movetext)
	}
}

func TestParseGames_BareMovetext(t *testing.T) {
	games := loader.ParseGames("\n\n1. e4 c5 2. Nf3\n")
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	if games[0].Movetext != "1. e4 c5 2. Nf3" {
		t.Errorf("movetext = %q", games[0].Movetext)
	}
	if games[0].Title() != "" {
		t.Errorf("untagged game should have no title")
	}
}

func TestGamePGN_RoundTripsTags(t *testing.T) {
	g := loader.Game{Tags: map[string]string{"White": "A", "Black": "B"}, Movetext: "1. e4 *"}
	games := loader.ParseGames(g.PGN())
	if len(games) != 1 || games[0].Tags["Black"] != "B" || games[0].Movetext != "1. e4 *" {
		t.Fatalf("round trip = %+v", games)
	}
}

func TestLoadPGN_Errors(t *testing.T) {
	if _, err := loader.LoadPGN(filepath.Join(t.TempDir(), "missing.pgn")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loader.LoadPGN(writeFile(t, "empty.pgn", "  \n")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestLoadTree(t *testing.T) {
	path := writeFile(t, "games.pgn", twoGames)

	tree, game, err := loader.LoadTree(path, 0)
	if err != nil {
		t.Fatalf("LoadTree: %v", err)
	}
	if game.Tags["Result"] != "1-0" {
		t.Errorf("wrong game returned")
	}
	if tree.ID != "0-Start-0" {
		t.Errorf("root id = %q", tree.ID)
	}
	if got := tree.FormatMainLine(); got != "1. e4 e5 2. f4 exf4 3. Bc4 Qh4+" {
		t.Errorf("main line = %q", got)
	}

	if _, _, err := loader.LoadTree(path, 5); err == nil {
		t.Error("expected error for out-of-range game")
	}
}
