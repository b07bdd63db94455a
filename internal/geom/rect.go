// Package geom provides axis-aligned rectangle arithmetic for capture targeting.
package geom

// Rect is an axis-aligned rectangle in screen coordinates. The zero value is
// the empty rectangle at the origin. Rects are immutable values; all methods
// return new rectangles.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent, clamped to 0 for inverted rects.
func (r Rect) Width() int {
	return max(0, r.Right-r.Left)
}

// Height returns the vertical extent, clamped to 0 for inverted rects.
func (r Rect) Height() int {
	return max(0, r.Bottom-r.Top)
}

// Area returns Width * Height. Never negative.
func (r Rect) Area() int {
	return r.Width() * r.Height()
}

// Intersect returns the overlapping region of r and other. The result may be
// inverted (zero area) when the rectangles are disjoint.
func (r Rect) Intersect(other Rect) Rect {
	return Rect{
		Left:   max(r.Left, other.Left),
		Top:    max(r.Top, other.Top),
		Right:  min(r.Right, other.Right),
		Bottom: min(r.Bottom, other.Bottom),
	}
}

// ClampWithin constrains r to lie inside bounds.
func (r Rect) ClampWithin(bounds Rect) Rect {
	return Rect{
		Left:   max(r.Left, bounds.Left),
		Top:    max(r.Top, bounds.Top),
		Right:  min(r.Right, bounds.Right),
		Bottom: min(r.Bottom, bounds.Bottom),
	}
}

// OverlapRatio returns the fraction of r's area covered by other, in [0,1].
// Returns 0 when r has zero area.
func (r Rect) OverlapRatio(other Rect) float64 {
	if r.Area() == 0 {
		return 0
	}
	return float64(r.Intersect(other).Area()) / float64(r.Area())
}
