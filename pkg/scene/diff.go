// Package scene keeps a persistent, animated picture of a laid-out move
// tree. Each update is computed as a pure enter/update/exit patch keyed by
// node identity (Diff) and then applied as timed transitions (Scene.Apply),
// so a new snapshot moves existing nodes instead of rebuilding the picture.
package scene

import (
	"sort"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
)

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Lerp interpolates between p and q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Segment is a link between two points.
type Segment struct {
	Source, Target Point
}

// Lerp interpolates both ends of the segment.
func (s Segment) Lerp(o Segment, t float64) Segment {
	return Segment{Source: s.Source.Lerp(o.Source, t), Target: s.Target.Lerp(o.Target, t)}
}

// NodeState is what Diff needs to know about one rendered node.
type NodeState struct {
	Pos     Point
	Exiting bool
}

// LinkState is what Diff needs to know about one rendered link.
type LinkState struct {
	Segment Segment
	Exiting bool
}

// Snapshot is the rendered scene as seen by Diff: current positions keyed
// by node identity, and links keyed by the identity of their target node.
type Snapshot struct {
	Nodes map[string]NodeState
	Links map[string]LinkState
}

// NodeOp moves one node from From to To.
type NodeOp struct {
	ID          string
	ParentID    string
	Label       string
	Depth       int
	HasChildren bool
	From, To    Point
}

// LinkOp moves one link, identified by its target node, from From to To.
type LinkOp struct {
	ChildID  string
	ParentID string
	From, To Segment
}

// Patch is the difference between a rendered scene and a new layout.
type Patch struct {
	Enter  []NodeOp
	Update []NodeOp
	Exit   []string

	LinkEnter  []LinkOp
	LinkUpdate []LinkOp
	LinkExit   []string
}

// Structural returns true if the patch adds or removes anything.
func (p Patch) Structural() bool {
	return len(p.Enter) > 0 || len(p.Exit) > 0 || len(p.LinkEnter) > 0 || len(p.LinkExit) > 0
}

// Diff compares the rendered scene with a fresh layout. Nodes and links are
// matched by identity only. A new node starts at its parent's current
// position when the parent is already on screen, otherwise at its own final
// position. Nodes already on their way out are not exited twice; if their
// identity reappears they are brought back as updates. A nil root exits
// everything that is still live.
func Diff(prev Snapshot, root *layout.Node) Patch {
	var patch Patch
	seen := make(map[string]bool)

	for _, n := range root.Descendants() {
		id := n.ID()
		seen[id] = true
		op := NodeOp{
			ID:          id,
			Label:       n.Label(),
			Depth:       n.Depth,
			HasChildren: n.HasChildren,
			To:          Point{X: n.X, Y: n.Y},
		}
		if n.Parent != nil {
			op.ParentID = n.Parent.ID()
		}

		if cur, ok := prev.Nodes[id]; ok {
			op.From = cur.Pos
			patch.Update = append(patch.Update, op)
		} else {
			op.From = op.To
			if n.Parent != nil {
				if parent, ok := prev.Nodes[op.ParentID]; ok {
					op.From = parent.Pos
				}
			}
			patch.Enter = append(patch.Enter, op)
		}

		if n.Parent == nil {
			continue
		}
		link := LinkOp{
			ChildID:  id,
			ParentID: op.ParentID,
			To: Segment{
				Source: Point{X: n.Parent.X, Y: n.Parent.Y},
				Target: op.To,
			},
		}
		if cur, ok := prev.Links[id]; ok {
			link.From = cur.Segment
			patch.LinkUpdate = append(patch.LinkUpdate, link)
		} else {
			link.From = link.To
			if parent, ok := prev.Nodes[op.ParentID]; ok {
				link.From = Segment{Source: parent.Pos, Target: parent.Pos}
			}
			patch.LinkEnter = append(patch.LinkEnter, link)
		}
	}

	for id, cur := range prev.Nodes {
		if !seen[id] && !cur.Exiting {
			patch.Exit = append(patch.Exit, id)
		}
	}
	for id, cur := range prev.Links {
		if !seen[id] && !cur.Exiting {
			patch.LinkExit = append(patch.LinkExit, id)
		}
	}
	sort.Strings(patch.Exit)
	sort.Strings(patch.LinkExit)
	return patch
}
