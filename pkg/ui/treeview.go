package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
	"github.com/Dicklesworthstone/chess_viewer/pkg/scene"
)

// Room kept around the laid-out tree for labels, in cells.
const (
	treeMarginLeft  = 6
	treeMarginRight = scene.MaxLabelWidth + 2
	treeMarginY     = 1
)

// Gesture steps.
const (
	panStep    = 4
	zoomFactor = 1.25
)

// treeNode is one searchable entry of the current tree
type treeNode struct {
	ID    string
	Label string
}

// TreeView is the Game Tree tab: the animated scene, the user's pan/zoom
// viewport, and a fuzzy finder over move labels.
type TreeView struct {
	theme       Theme
	scene       *scene.Scene
	root        *model.MoveNode
	nodes       []treeNode
	width       int
	height      int
	orientation layout.Orientation

	searching bool
	search    textinput.Model
	matches   []fuzzy.Match
	matchIdx  int
	selected  string
}

// NewTreeView creates an empty tree view animating over duration
func NewTreeView(theme Theme, duration time.Duration, o layout.Orientation) *TreeView {
	ti := textinput.New()
	ti.Placeholder = "find a move..."
	ti.CharLimit = 32
	ti.Width = 24
	ti.Prompt = "/ "

	return &TreeView{
		theme:       theme,
		scene:       scene.New(scene.NewViewport(), scene.WithDuration(duration)),
		orientation: o,
		search:      ti,
	}
}

// Scene exposes the rendered scene
func (v *TreeView) Scene() *scene.Scene {
	return v.scene
}

// Viewport exposes the gesture transform
func (v *TreeView) Viewport() *scene.Viewport {
	return v.scene.Viewport()
}

// Orientation returns the current layout orientation
func (v *TreeView) Orientation() layout.Orientation {
	return v.orientation
}

// SetTree replaces the tree and starts the transition from what is on
// screen. It returns true if an animation is running.
func (v *TreeView) SetTree(root *model.MoveNode, now time.Time) bool {
	v.root = root
	v.nodes = v.nodes[:0]
	root.Walk(func(n *model.MoveNode, _ int) bool {
		v.nodes = append(v.nodes, treeNode{ID: n.ID, Label: n.DisplayLabel()})
		return true
	})
	if v.selected != "" && !v.hasNode(v.selected) {
		v.selected = ""
	}
	if v.searching {
		v.refreshMatches()
	}
	return v.relayout(now)
}

// SetSize changes the canvas. The tree is laid out again for the new size;
// the viewport is left alone.
func (v *TreeView) SetSize(width, height int, now time.Time) bool {
	if width == v.width && height == v.height {
		return false
	}
	v.width, v.height = width, height
	return v.relayout(now)
}

// ToggleOrientation swaps the depth axis and lays the tree out again
func (v *TreeView) ToggleOrientation(now time.Time) bool {
	if v.orientation == layout.Horizontal {
		v.orientation = layout.Vertical
	} else {
		v.orientation = layout.Horizontal
	}
	return v.relayout(now)
}

// Advance steps the animation; it returns true while anything moves
func (v *TreeView) Advance(now time.Time) bool {
	return v.scene.Advance(now)
}

func (v *TreeView) canvas() (w, h float64) {
	rows := v.height
	if v.searching {
		rows--
	}
	return float64(v.width - treeMarginLeft - treeMarginRight), float64(rows - 2*treeMarginY)
}

func (v *TreeView) relayout(now time.Time) bool {
	if v.root == nil {
		v.scene.Render(nil, now)
		return false
	}
	w, h := v.canvas()
	laid := layout.Layout(v.root, w, h, layout.WithOrientation(v.orientation))
	if laid == nil {
		// canvas too small to draw on; keep the current picture
		return false
	}
	v.scene.Render(laid, now)
	return v.scene.Advance(now)
}

// Pan moves the view by whole steps
func (v *TreeView) Pan(dx, dy int) {
	v.scene.Viewport().Pan(float64(dx*panStep), float64(dy*panStep))
}

// Zoom scales about the centre of the canvas
func (v *TreeView) Zoom(in bool) {
	f := zoomFactor
	if !in {
		f = 1 / zoomFactor
	}
	v.scene.Viewport().ZoomAt(f, v.centre())
}

// ResetView restores the identity transform
func (v *TreeView) ResetView() {
	v.scene.Viewport().Reset()
}

// centre is the middle of the drawable canvas in screen space, before the
// label margin is added.
func (v *TreeView) centre() scene.Point {
	w, h := v.canvas()
	return scene.Point{X: w / 2, Y: h / 2}
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// Searching returns true while the finder has the keyboard
func (v *TreeView) Searching() bool {
	return v.searching
}

// Selected returns the identity of the highlighted node, if any
func (v *TreeView) Selected() string {
	return v.selected
}

// StartSearch opens the finder
func (v *TreeView) StartSearch(now time.Time) tea.Cmd {
	v.searching = true
	v.search.Reset()
	v.matches = nil
	v.matchIdx = 0
	v.relayout(now)
	return v.search.Focus()
}

func (v *TreeView) stopSearch(now time.Time) {
	v.searching = false
	v.search.Blur()
	v.relayout(now)
}

// UpdateSearch feeds a key to the finder. Enter centres the view on the
// current match, tab cycles through matches, esc closes.
func (v *TreeView) UpdateSearch(msg tea.KeyMsg, now time.Time) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.stopSearch(now)
		return nil
	case "enter":
		m, ok := v.currentMatch()
		v.stopSearch(now)
		if ok {
			v.Focus(v.nodes[m.Index].ID)
		}
		return nil
	case "tab", "down":
		if len(v.matches) > 0 {
			v.matchIdx = (v.matchIdx + 1) % len(v.matches)
			v.selected = v.nodes[v.matches[v.matchIdx].Index].ID
		}
		return nil
	case "shift+tab", "up":
		if len(v.matches) > 0 {
			v.matchIdx = (v.matchIdx - 1 + len(v.matches)) % len(v.matches)
			v.selected = v.nodes[v.matches[v.matchIdx].Index].ID
		}
		return nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.refreshMatches()
	return cmd
}

func (v *TreeView) refreshMatches() {
	query := strings.TrimSpace(v.search.Value())
	v.matchIdx = 0
	if query == "" {
		v.matches = nil
		return
	}
	labels := make([]string, len(v.nodes))
	for i, n := range v.nodes {
		labels[i] = n.Label
	}
	v.matches = fuzzy.Find(query, labels)
	if m, ok := v.currentMatch(); ok {
		v.selected = v.nodes[m.Index].ID
	}
}

func (v *TreeView) currentMatch() (fuzzy.Match, bool) {
	if v.matchIdx < 0 || v.matchIdx >= len(v.matches) {
		return fuzzy.Match{}, false
	}
	return v.matches[v.matchIdx], true
}

// Matches returns the labels matching the current query, best first
func (v *TreeView) Matches() []string {
	out := make([]string, len(v.matches))
	for i, m := range v.matches {
		out[i] = m.Str
	}
	return out
}

// Focus highlights a node and pans so that it sits in the middle of the
// canvas. The target is where the node is heading, not where it is now.
func (v *TreeView) Focus(id string) bool {
	n, ok := v.scene.Node(id)
	if !ok {
		return false
	}
	v.selected = id
	target := n.Pos
	if to, ok := v.finalPos(id); ok {
		target = to
	}
	vp := v.scene.Viewport()
	at := vp.Apply(target)
	c := v.centre()
	vp.Pan(c.X-at.X, c.Y-at.Y)
	return true
}

func (v *TreeView) finalPos(id string) (scene.Point, bool) {
	w, h := v.canvas()
	laid := layout.Layout(v.root, w, h, layout.WithOrientation(v.orientation))
	for _, n := range laid.Descendants() {
		if n.ID() == id {
			return scene.Point{X: n.X, Y: n.Y}, true
		}
	}
	return scene.Point{}, false
}

func (v *TreeView) hasNode(id string) bool {
	for _, n := range v.nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// VIEW
// ══════════════════════════════════════════════════════════════════════════════

// View draws the scene at its current animation state
func (v *TreeView) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}
	rows := v.height
	if v.searching {
		rows--
	}

	var out string
	if v.root == nil && v.scene.Len() == 0 {
		out = v.theme.Renderer.NewStyle().
			Foreground(v.theme.Subtext).
			Width(v.width).
			Height(rows).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No game tree yet")
	} else {
		margin := scene.Point{X: treeMarginLeft, Y: treeMarginY}
		if v.orientation == layout.Vertical {
			margin.X = treeMarginRight / 2
		}
		out = v.renderCanvas(v.scene.RasterizeAt(v.width, rows, margin))
	}

	if !v.searching {
		return out
	}
	status := ""
	if q := strings.TrimSpace(v.search.Value()); q != "" {
		status = v.theme.Renderer.NewStyle().Foreground(v.theme.Subtext).
			Render("  " + matchCount(v.matchIdx, len(v.matches)))
	}
	return out + "\n" + v.search.View() + status
}

func matchCount(idx, total int) string {
	if total == 0 {
		return "no match"
	}
	return strconv.Itoa(idx+1) + "/" + strconv.Itoa(total)
}

// renderCanvas styles runs of cells that share a style in one call
func (v *TreeView) renderCanvas(c *scene.Canvas) string {
	lines := make([]string, len(c.Cells))
	for y, row := range c.Cells {
		var b strings.Builder
		var run strings.Builder
		var runStyle *lipgloss.Style
		var runKey string
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runStyle == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(runStyle.Render(run.String()))
			}
			run.Reset()
		}
		for _, cell := range row {
			style, key := v.cellStyle(cell)
			if key != runKey {
				flush()
				runStyle, runKey = style, key
			}
			run.WriteString(cell.Ch)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (v *TreeView) cellStyle(cell scene.Cell) (*lipgloss.Style, string) {
	t := v.theme
	var s lipgloss.Style
	switch cell.Kind {
	case scene.CellLink:
		s = t.Renderer.NewStyle().Foreground(t.Border)
		return &s, "link"
	case scene.CellNode, scene.CellLabel:
		s = t.Renderer.NewStyle().Foreground(t.Subtext)
		key := "label"
		if cell.Kind == scene.CellNode {
			switch {
			case cell.Depth == 0:
				s, key = s.Foreground(t.Secondary), "root"
			case cell.Depth%2 == 1:
				s, key = s.Foreground(t.WhitePiece), "white"
			default:
				key = "black"
			}
		}
		if cell.NodeID != "" && cell.NodeID == v.selected {
			s = s.Background(t.Highlight).Foreground(t.Primary).Bold(true)
			key += "-selected"
		}
		return &s, key
	}
	return nil, ""
}
