package scene

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// CellKind tells the UI how to style a raster cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellLink
	CellNode
	CellLabel
)

// Cell is one terminal cell of a rasterized scene. Ch is empty for the
// trailing half of a wide rune.
type Cell struct {
	Ch     string
	Kind   CellKind
	NodeID string
	Depth  int
}

// Canvas is a character grid.
type Canvas struct {
	Width, Height int
	Cells         [][]Cell
}

// NewCanvas returns a blank width×height grid
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{Width: width, Height: height}
	c.Cells = make([][]Cell, height)
	for y := range c.Cells {
		row := make([]Cell, width)
		for x := range row {
			row[x] = Cell{Ch: " "}
		}
		c.Cells[y] = row
	}
	return c
}

func (c *Canvas) set(x, y int, cell Cell) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	c.Cells[y][x] = cell
}

// writeText places s starting at column x, clipping at the edges. Wide runes
// take two cells.
func (c *Canvas) writeText(x, y int, s string, cell Cell) {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x >= 0 && x+w <= c.Width {
			cell.Ch = string(r)
			c.set(x, y, cell)
			for i := 1; i < w; i++ {
				c.set(x+i, y, Cell{Kind: cell.Kind, NodeID: cell.NodeID})
			}
		}
		x += w
	}
}

// String returns the canvas as plain text lines
func (c *Canvas) String() string {
	lines := make([]string, len(c.Cells))
	for y, row := range c.Cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteString(cell.Ch)
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// NodeGlyph picks the marker for a node: the root is a target, moves by
// white (odd depth) are hollow and moves by black are filled.
func NodeGlyph(depth int, size float64) string {
	switch {
	case size < 0.5:
		return "·"
	case depth == 0:
		return "◉"
	case depth%2 == 1:
		return "○"
	default:
		return "●"
	}
}

// MaxLabelWidth bounds label text on the raster.
const MaxLabelWidth = 16

// Rasterize draws the scene at its current animation state into a
// width×height grid, one canvas unit per cell, through the viewport.
// Links are drawn first so nodes and labels sit on top of them. Internal
// nodes get their label on the row above, ending at the node; leaves get it
// to the right.
func (s *Scene) Rasterize(width, height int) *Canvas {
	return s.RasterizeAt(width, height, Point{})
}

// RasterizeAt is Rasterize with every projected point shifted by margin,
// leaving room for labels around a tree laid out on a smaller canvas.
func (s *Scene) RasterizeAt(width, height int, margin Point) *Canvas {
	c := NewCanvas(width, height)
	if width <= 0 || height <= 0 {
		return c
	}
	project := func(p Point) Point {
		q := s.Project(p)
		return Point{X: q.X + margin.X, Y: q.Y + margin.Y}
	}

	for _, l := range s.Links() {
		if l.Opacity < 0.5 {
			continue
		}
		a := project(l.Segment.Source)
		b := project(l.Segment.Target)
		drawLine(c, a, b)
	}

	for _, n := range s.Nodes() {
		p := project(n.Pos)
		x, y := round(p.X), round(p.Y)
		c.set(x, y, Cell{Ch: NodeGlyph(n.Depth, n.Size), Kind: CellNode, NodeID: n.ID, Depth: n.Depth})
		if n.Size < 0.5 {
			continue
		}

		label := runewidth.Truncate(n.Label, MaxLabelWidth, "…")
		cell := Cell{Kind: CellLabel, NodeID: n.ID, Depth: n.Depth}
		if n.HasChildren {
			c.writeText(x-runewidth.StringWidth(label)+1, y-1, label, cell)
		} else {
			c.writeText(x+2, y, label, cell)
		}
	}
	return c
}

func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// drawLine walks from a to b (Bresenham) choosing a glyph per step from its
// direction. Endpoints are left for the node markers.
func drawLine(c *Canvas, a, b Point) {
	x0, y0 := round(a.X), round(a.Y)
	x1, y1 := round(b.X), round(b.Y)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy

	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		stepX, stepY := false, false
		if e2 >= dy {
			err += dy
			x += sx
			stepX = true
		}
		if e2 <= dx {
			err += dx
			y += sy
			stepY = true
		}
		if x == x1 && y == y1 {
			return
		}
		if c.inside(x, y) && c.Cells[y][x].Kind == CellEmpty {
			c.set(x, y, Cell{Ch: linkGlyph(stepX, stepY, sx, sy), Kind: CellLink})
		}
	}
}

func linkGlyph(stepX, stepY bool, sx, sy int) string {
	switch {
	case stepX && !stepY:
		return "─"
	case stepY && !stepX:
		return "│"
	case sx == sy:
		return "╲"
	default:
		return "╱"
	}
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
