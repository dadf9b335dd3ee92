// Package layout computes tidy-tree coordinates for a move tree.
//
// The algorithm is the Buchheim/Walker improvement of Reingold–Tilford: a
// post-order pass places every subtree as close to its left sibling as the
// separation function allows, a pre-order pass resolves the accumulated
// modifiers, and the result is scaled to the canvas.
package layout

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Orientation selects which canvas axis carries depth.
type Orientation int

const (
	// Horizontal places depth along the width: the root sits on the left.
	Horizontal Orientation = iota
	// Vertical places depth along the height: the root sits on top.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseOrientation accepts "horizontal" or "vertical" (any case).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h", "":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown tree orientation %q (want horizontal or vertical)", s)
}

// Node is a move tree node decorated with canvas coordinates. Nodes are
// produced fresh by every Layout call.
type Node struct {
	Source      *model.MoveNode
	X, Y        float64
	Depth       int
	HasChildren bool
	Parent      *Node
	Children    []*Node

	// breadth is the pre-scaling coordinate along the sibling axis
	breadth float64
}

// ID returns the identity of the underlying move node
func (n *Node) ID() string {
	return n.Source.ID
}

// Label returns the display label of the underlying move node
func (n *Node) Label() string {
	return n.Source.DisplayLabel()
}

// Descendants returns the node and all of its descendants in pre-order.
func (n *Node) Descendants() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var visit func(*Node)
	visit = func(node *Node) {
		out = append(out, node)
		for _, child := range node.Children {
			visit(child)
		}
	}
	visit(n)
	return out
}

// Link connects a parent to one of its children.
type Link struct {
	Source *Node
	Target *Node
}

// Links returns every parent→child link in pre-order of the target.
func (n *Node) Links() []Link {
	var links []Link
	for _, node := range n.Descendants() {
		if node.Parent != nil {
			links = append(links, Link{Source: node.Parent, Target: node})
		}
	}
	return links
}

// SeparationFunc returns the minimum breadth distance between two adjacent
// nodes, in units of sibling spacing.
type SeparationFunc func(a, b *Node) float64

// DefaultSeparation keeps siblings one unit apart and cousins two.
func DefaultSeparation(a, b *Node) float64 {
	if a.Parent == b.Parent {
		return 1
	}
	return 2
}

type options struct {
	orientation Orientation
	separation  SeparationFunc
}

// Option customises Layout behaviour.
type Option func(*options)

// WithOrientation sets which axis carries depth. Default: Horizontal.
func WithOrientation(o Orientation) Option { return func(opts *options) { opts.orientation = o } }

// WithSeparation overrides DefaultSeparation.
func WithSeparation(fn SeparationFunc) Option { return func(opts *options) { opts.separation = fn } }

// Layout positions every node of root inside a width×height canvas. It
// returns nil when there is nothing to draw: a nil root or a canvas with a
// non-positive dimension. Callers treat nil as "skip this pass".
func Layout(root *model.MoveNode, width, height float64, opts ...Option) *Node {
	if root == nil || width <= 0 || height <= 0 {
		return nil
	}
	cfg := options{orientation: Horizontal, separation: DefaultSeparation}
	for _, o := range opts {
		o(&cfg)
	}

	hier := build(root, nil, 0)
	tidy(hier, cfg.separation)

	depthExtent, breadthExtent := width, height
	if cfg.orientation == Vertical {
		depthExtent, breadthExtent = height, width
	}
	scale(hier, cfg, depthExtent, breadthExtent)
	return hier
}

func build(src *model.MoveNode, parent *Node, depth int) *Node {
	node := &Node{
		Source:      src,
		Depth:       depth,
		HasChildren: len(src.Children) > 0,
		Parent:      parent,
	}
	for _, child := range src.Children {
		if child == nil {
			continue
		}
		node.Children = append(node.Children, build(child, node, depth+1))
	}
	return node
}

// scale maps breadth to [0, breadthExtent] and depth to [0, depthExtent].
func scale(root *Node, cfg options, depthExtent, breadthExtent float64) {
	all := root.Descendants()
	left, right, bottom := root, root, root
	for _, n := range all {
		if n.breadth < left.breadth {
			left = n
		}
		if n.breadth > right.breadth {
			right = n
		}
		if n.Depth > bottom.Depth {
			bottom = n
		}
	}

	s := 1.0
	if left != right {
		s = cfg.separation(left, right) / 2
	}
	tx := s - left.breadth
	kx := breadthExtent / (right.breadth + s + tx)
	maxDepth := float64(bottom.Depth)
	if maxDepth == 0 {
		maxDepth = 1
	}
	ky := depthExtent / maxDepth

	for _, n := range all {
		b := (n.breadth + tx) * kx
		d := float64(n.Depth) * ky
		if cfg.orientation == Vertical {
			n.X, n.Y = b, d
		} else {
			n.X, n.Y = d, b
		}
	}
}

// Breadth returns the node's coordinate along the sibling axis for the
// given orientation.
func (n *Node) Breadth(o Orientation) float64 {
	if o == Vertical {
		return n.X
	}
	return n.Y
}
