package scene

import (
	"sort"
	"time"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
)

// DefaultDuration is the length of every enter, update and exit transition.
const DefaultDuration = 500 * time.Millisecond

// EaseFunc maps linear progress in [0,1] to eased progress.
type EaseFunc func(t float64) float64

// EaseCubicInOut accelerates through the first half and decelerates
// through the second.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseLinear is the identity easing.
func EaseLinear(t float64) float64 { return t }

// RenderedNode is the persistent on-screen handle for one move.
type RenderedNode struct {
	ID          string
	ParentID    string
	Label       string
	Depth       int
	HasChildren bool

	Pos  Point
	Size float64 // 1 when fully shown, 0 when collapsed

	from, to         Point
	fromSize, toSize float64
	start            time.Time
	exiting          bool
}

// Exiting returns true while the node is animating out of the scene
func (n *RenderedNode) Exiting() bool {
	return n.exiting
}

// RenderedLink is the persistent on-screen handle for the link into a node.
type RenderedLink struct {
	ChildID  string
	ParentID string

	Segment Segment
	Opacity float64

	from, to               Segment
	fromOpacity, toOpacity float64
	start                  time.Time
	exiting                bool
}

// Exiting returns true while the link is fading out of the scene
func (l *RenderedLink) Exiting() bool {
	return l.exiting
}

// Scene is the rendered tree. It is not safe for concurrent use; the UI
// loop owns it.
type Scene struct {
	nodes    map[string]*RenderedNode
	links    map[string]*RenderedLink
	viewport *Viewport
	duration time.Duration
	ease     EaseFunc
}

// Option customises a Scene.
type Option func(*Scene)

// WithDuration sets the transition duration. Zero makes every change instant.
func WithDuration(d time.Duration) Option { return func(s *Scene) { s.duration = d } }

// WithEase sets the easing function. Default: EaseCubicInOut.
func WithEase(fn EaseFunc) Option { return func(s *Scene) { s.ease = fn } }

// New creates an empty scene drawn through vp. A nil viewport gets the
// identity transform.
func New(vp *Viewport, opts ...Option) *Scene {
	if vp == nil {
		vp = NewViewport()
	}
	s := &Scene{
		nodes:    make(map[string]*RenderedNode),
		links:    make(map[string]*RenderedLink),
		viewport: vp,
		duration: DefaultDuration,
		ease:     EaseCubicInOut,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Viewport returns the zoom/pan transform the scene is drawn through.
func (s *Scene) Viewport() *Viewport {
	return s.viewport
}

// Render brings the scene in line with root and returns the patch it
// applied. A nil root is the "no data yet" state: the scene is cleared.
// Rendering the same layout twice yields no enters or exits the second time.
func (s *Scene) Render(root *layout.Node, now time.Time) Patch {
	if root == nil {
		s.Clear()
		return Patch{}
	}
	s.Advance(now)
	patch := Diff(s.Snapshot(), root)
	s.Apply(patch, now)
	return patch
}

// Snapshot returns the current positions for Diff.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make(map[string]NodeState, len(s.nodes)),
		Links: make(map[string]LinkState, len(s.links)),
	}
	for id, n := range s.nodes {
		snap.Nodes[id] = NodeState{Pos: n.Pos, Exiting: n.exiting}
	}
	for id, l := range s.links {
		snap.Links[id] = LinkState{Segment: l.Segment, Exiting: l.exiting}
	}
	return snap
}

// Apply starts the transitions described by patch at time now.
func (s *Scene) Apply(patch Patch, now time.Time) {
	for _, op := range patch.Enter {
		s.nodes[op.ID] = &RenderedNode{
			ID:          op.ID,
			ParentID:    op.ParentID,
			Label:       op.Label,
			Depth:       op.Depth,
			HasChildren: op.HasChildren,
			Pos:         op.From,
			Size:        1,
			from:        op.From,
			to:          op.To,
			fromSize:    1,
			toSize:      1,
			start:       now,
		}
	}
	for _, op := range patch.Update {
		n, ok := s.nodes[op.ID]
		if !ok {
			continue
		}
		n.ParentID = op.ParentID
		n.Label = op.Label
		n.Depth = op.Depth
		n.HasChildren = op.HasChildren
		n.from, n.to = n.Pos, op.To
		n.fromSize, n.toSize = n.Size, 1
		n.start = now
		n.exiting = false
	}
	for _, id := range patch.Exit {
		n, ok := s.nodes[id]
		if !ok {
			continue
		}
		n.from, n.to = n.Pos, n.Pos
		n.fromSize, n.toSize = n.Size, 0
		n.start = now
		n.exiting = true
	}

	for _, op := range patch.LinkEnter {
		s.links[op.ChildID] = &RenderedLink{
			ChildID:     op.ChildID,
			ParentID:    op.ParentID,
			Segment:     op.From,
			Opacity:     1,
			from:        op.From,
			to:          op.To,
			fromOpacity: 1,
			toOpacity:   1,
			start:       now,
		}
	}
	for _, op := range patch.LinkUpdate {
		l, ok := s.links[op.ChildID]
		if !ok {
			continue
		}
		l.ParentID = op.ParentID
		l.from, l.to = l.Segment, op.To
		l.fromOpacity, l.toOpacity = l.Opacity, 1
		l.start = now
		l.exiting = false
	}
	for _, id := range patch.LinkExit {
		l, ok := s.links[id]
		if !ok {
			continue
		}
		l.from, l.to = l.Segment, l.Segment
		l.fromOpacity, l.toOpacity = l.Opacity, 0
		l.start = now
		l.exiting = true
	}

	s.Advance(now)
}

// Advance moves every transition to time now and deletes nodes and links
// whose exit has finished. It reports whether anything is still moving.
func (s *Scene) Advance(now time.Time) bool {
	animating := false

	for id, n := range s.nodes {
		p := s.progress(n.start, now)
		e := s.ease(p)
		n.Pos = n.from.Lerp(n.to, e)
		n.Size = n.fromSize + (n.toSize-n.fromSize)*e
		if p >= 1 && n.exiting {
			delete(s.nodes, id)
			continue
		}
		if p < 1 {
			animating = true
		}
	}
	for id, l := range s.links {
		p := s.progress(l.start, now)
		e := s.ease(p)
		l.Segment = l.from.Lerp(l.to, e)
		l.Opacity = l.fromOpacity + (l.toOpacity-l.fromOpacity)*e
		if p >= 1 && l.exiting {
			delete(s.links, id)
			continue
		}
		if p < 1 {
			animating = true
		}
	}
	return animating
}

func (s *Scene) progress(start, now time.Time) float64 {
	if s.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(s.duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Clear drops every node and link immediately. The viewport is kept.
func (s *Scene) Clear() {
	s.nodes = make(map[string]*RenderedNode)
	s.links = make(map[string]*RenderedLink)
}

// Len returns the number of rendered nodes, exiting ones included
func (s *Scene) Len() int {
	return len(s.nodes)
}

// Node returns the rendered node with the given identity
func (s *Scene) Node(id string) (*RenderedNode, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Link returns the rendered link into the node with the given identity
func (s *Scene) Link(childID string) (*RenderedLink, bool) {
	l, ok := s.links[childID]
	return l, ok
}

// Nodes returns the rendered nodes ordered by depth, then identity.
func (s *Scene) Nodes() []*RenderedNode {
	out := make([]*RenderedNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Links returns the rendered links ordered by target identity.
func (s *Scene) Links() []*RenderedLink {
	out := make([]*RenderedLink, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChildID < out[j].ChildID })
	return out
}

// Project maps a canvas point to screen space through the viewport.
func (s *Scene) Project(p Point) Point {
	return s.viewport.Apply(p)
}
