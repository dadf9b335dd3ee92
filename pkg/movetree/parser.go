// Package movetree turns server-supplied move data into a normalized game
// tree and tags every node with an identity that is stable across snapshots.
package movetree

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// RootName is the name given to the synthetic root of every tree
const RootName = "Start"

var moveNumberRe = regexp.MustCompile(`^(\d+)(\.+)(.*)$`)

// nagGlyphs maps the standard move-quality NAGs to their glyphs.
var nagGlyphs = map[string]string{
	"$1": "!",
	"$2": "?",
	"$3": "!!",
	"$4": "??",
	"$5": "!?",
	"$6": "?!",
}

// NewRoot returns an empty tree: a lone root with no children
func NewRoot() *model.MoveNode {
	return &model.MoveNode{Name: RootName, Label: RootName}
}

// Parse converts raw move data into a tree. JSON objects are decoded as a
// structured tree; anything else is read as annotated move text. Empty input
// yields NewRoot. Identities are not assigned; see AssignIdentities.
func Parse(raw []byte) (*model.MoveNode, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NewRoot(), nil
	}
	if isJSONTree(trimmed) {
		return parseJSON(trimmed)
	}
	return ParseText(string(trimmed)), nil
}

// jsonKeyRe matches the opening of a JSON object: a brace and a quoted key.
var jsonKeyRe = regexp.MustCompile(`^\{\s*"`)

// isJSONTree tells a structured tree from move text that opens with a
// {comment}. Valid JSON is a tree; so is a truncated object that starts with
// a quoted key, so that it still reports MalformedTree.
func isJSONTree(data []byte) bool {
	if data[0] != '{' {
		return false
	}
	return json.Valid(data) || jsonKeyRe.Match(data)
}

// ParseString is Parse for string input
func ParseString(raw string) (*model.MoveNode, error) {
	return Parse([]byte(raw))
}

type jsonNode struct {
	Name     *string     `json:"name"`
	Label    *string     `json:"label"`
	Children []*jsonNode `json:"children"`
}

func parseJSON(data []byte) (*model.MoveNode, error) {
	var raw jsonNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, model.NewError(model.KindMalformedTree, "decode game tree", err)
	}
	return convertJSON(&raw, "")
}

func convertJSON(raw *jsonNode, path string) (*model.MoveNode, error) {
	if raw == nil {
		return nil, model.Errorf(model.KindMalformedTree, "decode game tree", "null node at %s", pathOrRoot(path))
	}
	node := &model.MoveNode{}
	switch {
	case raw.Name != nil:
		node.Name = *raw.Name
		if raw.Label != nil {
			node.Label = *raw.Label
		}
	case raw.Label != nil:
		node.Name = *raw.Label
		node.Label = *raw.Label
	default:
		return nil, model.Errorf(model.KindMalformedTree, "decode game tree", "node at %s has no name", pathOrRoot(path))
	}

	for i, child := range raw.Children {
		converted, err := convertJSON(child, childPath(path, i))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, converted)
	}
	return node, nil
}

// Validate checks a tree built in memory: every node needs a name, and nil
// children are rejected.
func Validate(root *model.MoveNode) error {
	if root == nil {
		return model.Errorf(model.KindMalformedTree, "validate game tree", "nil root")
	}
	var walk func(n *model.MoveNode, path string) error
	walk = func(n *model.MoveNode, path string) error {
		if n.Name == "" && n.Label == "" {
			return model.Errorf(model.KindMalformedTree, "validate game tree", "node at %s has no name", pathOrRoot(path))
		}
		for i, child := range n.Children {
			if child == nil {
				return model.Errorf(model.KindMalformedTree, "validate game tree", "nil child at %s", childPath(path, i))
			}
			if err := walk(child, childPath(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, "")
}

func pathOrRoot(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

func childPath(path string, i int) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(i))
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// MOVE TEXT - numbered main line with parenthesized variations
// ══════════════════════════════════════════════════════════════════════════════

type tokenKind int

const (
	tokMove tokenKind = iota
	tokOpen
	tokClose
	tokComment
	tokNAG
)

type token struct {
	kind tokenKind
	text string
}

// ParseText reads annotated move text such as
// "1. e4 e5 (1... c5 2. Nf3) 2. Nf3 Nc6". Each main-line move hangs off the
// previous one; a variation is an alternative to the move it follows, so it
// is attached as a sibling of that move. Empty variations and unmatched
// closing parentheses are ignored.
func ParseText(text string) *model.MoveNode {
	root := NewRoot()
	p := &textParser{tokens: tokenize(text)}
	p.line(root, 0)
	return root
}

type textParser struct {
	tokens []token
	pos    int
}

func (p *textParser) line(parent *model.MoveNode, depth int) {
	cur := parent
	var before, last *model.MoveNode

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch tok.kind {
		case tokMove:
			node := newMoveNode(tok.text)
			cur.Children = append(cur.Children, node)
			before, cur, last = cur, node, node
		case tokOpen:
			anchor := before
			if anchor == nil {
				anchor = parent
			}
			p.line(anchor, depth+1)
		case tokClose:
			if depth > 0 {
				return
			}
		case tokComment:
			if last != nil {
				last.Label = strings.TrimSpace(last.Label + " " + tok.text)
			}
		case tokNAG:
			if last != nil {
				if glyph, ok := nagGlyphs[tok.text]; ok {
					last.Label += glyph
				}
			}
		}
	}
}

func newMoveNode(san string) *model.MoveNode {
	return &model.MoveNode{
		Name:  strings.TrimRight(san, "!?"),
		Label: san,
	}
}

func tokenize(text string) []token {
	var tokens []token
	runes := []rune(text)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokOpen})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokClose})
			i++
		case r == '{':
			end := indexRune(runes, i+1, '}')
			tokens = append(tokens, token{kind: tokComment, text: strings.TrimSpace(string(runes[i+1 : end]))})
			i = end + 1
		case r == '[':
			// PGN tag pair; headers carry no moves
			i = indexRune(runes, i+1, ']') + 1
		case r == '}' || r == ']':
			i++
		case r == ';':
			end := indexRune(runes, i+1, '\n')
			tokens = append(tokens, token{kind: tokComment, text: strings.TrimSpace(string(runes[i+1 : end]))})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !isDelimiter(runes[i]) {
				i++
			}
			tokens = appendWord(tokens, string(runes[start:i]))
		}
	}
	return tokens
}

func appendWord(tokens []token, word string) []token {
	if strings.HasPrefix(word, "$") {
		return append(tokens, token{kind: tokNAG, text: word})
	}
	if m := moveNumberRe.FindStringSubmatch(word); m != nil {
		// "12." or "12..." alone, or a move glued to its number ("1.e4")
		word = m[3]
	}
	// A stray number ("12" without its dot) is never a move.
	if word == "" || isResult(word) || isDigits(word) {
		return tokens
	}
	return append(tokens, token{kind: tokMove, text: word})
}

func isDigits(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isResult(word string) bool {
	switch word {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '(', ')', '{', '}', '[', ']', ';':
		return true
	}
	return false
}

// indexRune returns the index of r at or after from, or len(runes) if absent.
func indexRune(runes []rune, from int, r rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return len(runes)
}
