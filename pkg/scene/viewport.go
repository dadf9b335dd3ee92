package scene

// Zoom limits.
const (
	MinScale = 0.25
	MaxScale = 8
)

// Viewport is the user's zoom/pan transform. Only gesture handlers change
// it; rendering a new tree never does, so a data refresh keeps the view
// where the user left it.
type Viewport struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// NewViewport returns the identity transform
func NewViewport() *Viewport {
	return &Viewport{Scale: 1}
}

// Apply maps a canvas point to screen space
func (v *Viewport) Apply(p Point) Point {
	return Point{X: p.X*v.Scale + v.TranslateX, Y: p.Y*v.Scale + v.TranslateY}
}

// Invert maps a screen point back to canvas space
func (v *Viewport) Invert(p Point) Point {
	return Point{X: (p.X - v.TranslateX) / v.Scale, Y: (p.Y - v.TranslateY) / v.Scale}
}

// Pan shifts the view by a screen-space offset
func (v *Viewport) Pan(dx, dy float64) {
	v.TranslateX += dx
	v.TranslateY += dy
}

// ZoomAt multiplies the scale by factor while keeping the screen point
// center fixed. The scale is clamped to [MinScale, MaxScale].
func (v *Viewport) ZoomAt(factor float64, center Point) {
	if factor <= 0 {
		return
	}
	world := v.Invert(center)
	scale := v.Scale * factor
	if scale < MinScale {
		scale = MinScale
	}
	if scale > MaxScale {
		scale = MaxScale
	}
	v.Scale = scale
	v.TranslateX = center.X - world.X*scale
	v.TranslateY = center.Y - world.Y*scale
}

// Reset restores the identity transform
func (v *Viewport) Reset() {
	*v = Viewport{Scale: 1}
}

// IsIdentity returns true if the viewport leaves points unchanged
func (v *Viewport) IsIdentity() bool {
	return v.Scale == 1 && v.TranslateX == 0 && v.TranslateY == 0
}
