package model

import (
	"strconv"
	"strings"
)

// StartPosition is the sentinel position used before the server has reported
// a real one.
const StartPosition Position = "start"

// Position is an opaque board-state token: a FEN string or StartPosition.
type Position string

// IsStart returns true if the position is the start sentinel
func (p Position) IsStart() bool {
	return p == StartPosition
}

// String returns the raw token
func (p Position) String() string {
	return string(p)
}

// Orientation is the side shown at the bottom of the board
type Orientation string

const (
	OrientationWhite Orientation = "white"
	OrientationBlack Orientation = "black"
)

// IsValid returns true if the orientation is a recognized value
func (o Orientation) IsValid() bool {
	switch o {
	case OrientationWhite, OrientationBlack:
		return true
	}
	return false
}

// Flipped returns the opposite orientation
func (o Orientation) Flipped() Orientation {
	if o == OrientationBlack {
		return OrientationWhite
	}
	return OrientationBlack
}

// MoveNode is one move of a game tree. Children are ordered: main line
// first, then variations in the order the server sent them.
type MoveNode struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Label    string      `json:"label,omitempty"`
	Children []*MoveNode `json:"children,omitempty"`
}

// DisplayLabel returns Label, falling back to Name
func (n *MoveNode) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.Name
}

// HasChildren returns true if the node has at least one continuation
func (n *MoveNode) HasChildren() bool {
	return len(n.Children) > 0
}

// Clone creates a deep copy of the subtree rooted at n
func (n *MoveNode) Clone() *MoveNode {
	if n == nil {
		return nil
	}
	clone := &MoveNode{ID: n.ID, Name: n.Name, Label: n.Label}
	if n.Children != nil {
		clone.Children = make([]*MoveNode, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Walk visits the subtree in pre-order. Returning false from fn stops the
// descent into that node's children.
func (n *MoveNode) Walk(fn func(node *MoveNode, depth int) bool) {
	var visit func(node *MoveNode, depth int)
	visit = func(node *MoveNode, depth int) {
		if node == nil || !fn(node, depth) {
			return
		}
		for _, child := range node.Children {
			visit(child, depth+1)
		}
	}
	visit(n, 0)
}

// Count returns the number of nodes in the subtree
func (n *MoveNode) Count() int {
	count := 0
	n.Walk(func(*MoveNode, int) bool {
		count++
		return true
	})
	return count
}

// MainLine returns the names along the first-child chain, excluding the root
func (n *MoveNode) MainLine() []string {
	var line []string
	for cur := n; cur != nil && len(cur.Children) > 0; cur = cur.Children[0] {
		line = append(line, cur.Children[0].Name)
	}
	return line
}

// FormatMainLine renders the main line as numbered move text ("1. e4 e5 2. Nf3")
func (n *MoveNode) FormatMainLine() string {
	var b strings.Builder
	for i, move := range n.MainLine() {
		if i%2 == 0 {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(i/2 + 1))
			b.WriteString(". ")
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(move)
	}
	return b.String()
}

// BoardState is everything the view needs to draw the board and side panel
type BoardState struct {
	Position        Position
	Orientation     Orientation
	MoveTree        *MoveNode
	EvaluationScore *float64
}

// DefaultBoardState returns the state a new session starts with
func DefaultBoardState() BoardState {
	return BoardState{
		Position:    StartPosition,
		Orientation: OrientationWhite,
	}
}
