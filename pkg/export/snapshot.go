package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/Dicklesworthstone/chess_viewer/pkg/layout"
	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Snapshot defaults.
const (
	DefaultSnapshotWidth  = 1200
	DefaultSnapshotHeight = 800
	snapshotMargin        = 40
	nodeRadius            = 5
)

// TreeSnapshotOptions configures SaveTreeSnapshot.
type TreeSnapshotOptions struct {
	Path   string
	Format string // "svg" or "png"; inferred from Path when empty
	Tree   *model.MoveNode
	Title  string // drawn top-left when set
	Width  int
	Height int

	Orientation layout.Orientation
}

// SaveTreeSnapshot lays the move tree out and writes it as an SVG or PNG
// image, drawn the way the tree tab draws it: curved links, nodes shaded by
// the side that played the move, labels left of branching moves and right of
// leaves.
func SaveTreeSnapshot(opts TreeSnapshotOptions) error {
	if opts.Format == "" {
		opts.Format = strings.TrimPrefix(filepath.Ext(opts.Path), ".")
	}
	if opts.Tree == nil {
		return fmt.Errorf("no move tree to export")
	}
	if err := checkFormat(opts.Format); err != nil {
		return err
	}

	if dir := filepath.Dir(opts.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := WriteTreeSnapshot(w, opts); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}

// WriteTreeSnapshot renders the tree to w. opts.Path is ignored; Format must
// be "svg" or "png".
func WriteTreeSnapshot(w io.Writer, opts TreeSnapshotOptions) error {
	if opts.Tree == nil {
		return fmt.Errorf("no move tree to export")
	}
	if err := checkFormat(opts.Format); err != nil {
		return err
	}
	if opts.Width <= 0 {
		opts.Width = DefaultSnapshotWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultSnapshotHeight
	}

	root := layout.Layout(opts.Tree,
		float64(opts.Width-2*snapshotMargin),
		float64(opts.Height-2*snapshotMargin),
		layout.WithOrientation(opts.Orientation))
	if root == nil {
		return fmt.Errorf("snapshot canvas %dx%d is too small", opts.Width, opts.Height)
	}

	if strings.EqualFold(opts.Format, "svg") {
		return writeSVG(w, root, opts)
	}
	return writePNG(w, root, opts)
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "svg", "png":
		return nil
	}
	return fmt.Errorf("unsupported snapshot format %q (want svg or png)", format)
}

type point struct{ x, y float64 }

func place(n *layout.Node) point {
	return point{n.X + snapshotMargin, n.Y + snapshotMargin}
}

// nodeFill follows the board colours: the root is neutral, white's moves
// (odd depth) are white and black's are black.
func nodeFill(depth int) color.RGBA {
	switch {
	case depth == 0:
		return color.RGBA{0x80, 0x80, 0x80, 0xff}
	case depth%2 == 1:
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	default:
		return color.RGBA{0x00, 0x00, 0x00, 0xff}
	}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// linkCurve is a horizontal (or vertical) cubic between parent and child.
func linkCurve(a, b point, o layout.Orientation) (c1, c2 point) {
	if o == layout.Vertical {
		my := (a.y + b.y) / 2
		return point{a.x, my}, point{b.x, my}
	}
	mx := (a.x + b.x) / 2
	return point{mx, a.y}, point{mx, b.y}
}

func writeSVG(w io.Writer, root *layout.Node, opts TreeSnapshotOptions) error {
	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#f0f0f0")
	if opts.Title != "" {
		canvas.Text(12, 20, opts.Title, "font-family:sans-serif;font-size:14px;fill:#333")
	}

	canvas.Gid("links")
	for _, l := range root.Links() {
		a, b := place(l.Source), place(l.Target)
		c1, c2 := linkCurve(a, b, opts.Orientation)
		d := fmt.Sprintf("M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f", a.x, a.y, c1.x, c1.y, c2.x, c2.y, b.x, b.y)
		canvas.Path(d, "fill:none;stroke:#555;stroke-width:1.5")
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range root.Descendants() {
		p := place(n)
		x, y := int(p.x+0.5), int(p.y+0.5)
		canvas.Circle(x, y, nodeRadius, fmt.Sprintf("fill:%s;stroke:#000", hex(nodeFill(n.Depth))))
		style := "font-family:sans-serif;font-size:12px;fill:#222"
		if n.HasChildren {
			canvas.Text(x-10, y-10, n.Label(), style+";text-anchor:end")
		} else {
			canvas.Text(x+10, y+4, n.Label(), style+";text-anchor:start")
		}
	}
	canvas.Gend()
	canvas.End()
	return nil
}

func writePNG(w io.Writer, root *layout.Node, opts TreeSnapshotOptions) error {
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB255(0xf0, 0xf0, 0xf0)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	if opts.Title != "" {
		dc.SetRGB255(0x33, 0x33, 0x33)
		dc.DrawString(opts.Title, 12, 20)
	}

	dc.SetRGB255(0x55, 0x55, 0x55)
	dc.SetLineWidth(1.5)
	for _, l := range root.Links() {
		a, b := place(l.Source), place(l.Target)
		c1, c2 := linkCurve(a, b, opts.Orientation)
		dc.MoveTo(a.x, a.y)
		dc.CubicTo(c1.x, c1.y, c2.x, c2.y, b.x, b.y)
		dc.Stroke()
	}

	for _, n := range root.Descendants() {
		p := place(n)
		dc.DrawCircle(p.x, p.y, nodeRadius)
		dc.SetColor(nodeFill(n.Depth))
		dc.FillPreserve()
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.SetRGB255(0x22, 0x22, 0x22)
		if n.HasChildren {
			dc.DrawStringAnchored(n.Label(), p.x-10, p.y-10, 1, 0.5)
		} else {
			dc.DrawStringAnchored(n.Label(), p.x+10, p.y, 0, 0.5)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
