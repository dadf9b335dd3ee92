// Package loader reads games from PGN files on disk, for upload to the
// server and for offline tree export.
package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Game is one PGN game: its tag pairs and its movetext, comments and
// variations included.
type Game struct {
	Tags     map[string]string
	Movetext string
}

// Title is "White - Black" when both players are tagged
func (g Game) Title() string {
	w, b := g.Tags["White"], g.Tags["Black"]
	if w == "" || b == "" {
		return ""
	}
	return w + " - " + b
}

// PGN reassembles the game as PGN text
func (g Game) PGN() string {
	var b strings.Builder
	for _, key := range sevenTagRoster {
		if v, ok := g.Tags[key]; ok {
			fmt.Fprintf(&b, "[%s %q]\n", key, v)
		}
	}
	for key, v := range g.Tags {
		if !isRosterTag(key) {
			fmt.Fprintf(&b, "[%s %q]\n", key, v)
		}
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(g.Movetext)
	return b.String()
}

var sevenTagRoster = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

func isRosterTag(key string) bool {
	for _, k := range sevenTagRoster {
		if k == key {
			return true
		}
	}
	return false
}

var tagLine = regexp.MustCompile(`^\[(\w+)\s+"((?:[^"\\]|\\.)*)"\]\s*$`)

// LoadPGN returns the raw contents of a PGN file, without a UTF-8 BOM.
func LoadPGN(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("no PGN file at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read PGN file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return "", fmt.Errorf("PGN file %s is empty", path)
	}
	return string(data), nil
}

// LoadGames reads every game in a PGN file. Malformed tag lines are skipped
// rather than failing the whole file.
func LoadGames(path string) ([]Game, error) {
	text, err := LoadPGN(path)
	if err != nil {
		return nil, err
	}
	return ParseGames(text), nil
}

// ParseGames splits PGN text into games. A game starts at a tag section or,
// for bare movetext, at the first non-blank line.
func ParseGames(text string) []Game {
	var (
		games    []Game
		cur      *Game
		movetext []string
		inMoves  bool
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Movetext = strings.TrimSpace(strings.Join(movetext, "\n"))
		if cur.Movetext != "" || len(cur.Tags) > 0 {
			games = append(games, *cur)
		}
		cur, movetext, inMoves = nil, nil, false
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && !strings.HasPrefix(trimmed, "[%") {
			if inMoves {
				flush()
			}
			if cur == nil {
				cur = &Game{Tags: map[string]string{}}
			}
			m := tagLine.FindStringSubmatch(trimmed)
			if m == nil {
				// Skip malformed tags but keep loading the game
				continue
			}
			cur.Tags[m[1]] = strings.ReplaceAll(m[2], `\"`, `"`)
			continue
		}
		if trimmed == "" && !inMoves {
			continue
		}
		if cur == nil {
			cur = &Game{Tags: map[string]string{}}
		}
		inMoves = true
		movetext = append(movetext, line)
	}
	flush()
	return games
}
