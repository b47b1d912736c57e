// Package geom provides the point, rectangle, and collision primitives used
// by village layout.
package geom

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r, inset on all sides by padding.
// A zero padding tests against the rectangle itself.
func (r Rect) Contains(p Point, padding float64) bool {
	return p.X >= r.X+padding && p.X <= r.X+r.Width-padding &&
		p.Y >= r.Y+padding && p.Y <= r.Y+r.Height-padding
}

// Inset returns r shrunk inward by d on all sides.
//
// Precondition: d*2 must not exceed either dimension for a meaningful result.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Overlaps reports whether a and b overlap after each is expanded outward by
// spacing on all sides. This is the single collision test used for all
// structure placement.
func Overlaps(a, b Rect, spacing float64) bool {
	ax, ay := a.X-spacing, a.Y-spacing
	aw, ah := a.Width+2*spacing, a.Height+2*spacing
	bx, by := b.X-spacing, b.Y-spacing
	bw, bh := b.Width+2*spacing, b.Height+2*spacing
	return ax < bx+bw && ax+aw > bx &&
		ay < by+bh && ay+ah > by
}

// OverlapsAny reports whether candidate overlaps any rectangle in placed,
// using the shared spacing padding.
func OverlapsAny(candidate Rect, placed []Rect, spacing float64) bool {
	for _, p := range placed {
		if Overlaps(candidate, p, spacing) {
			return true
		}
	}
	return false
}

// RectAround returns the rectangle of the given size centered on p.
func RectAround(p Point, width, height float64) Rect {
	return Rect{X: p.X - width/2, Y: p.Y - height/2, Width: width, Height: height}
}

// Clamp limits v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampToRect limits p to the interior of r, inset by padding.
func ClampToRect(p Point, r Rect, padding float64) Point {
	return Point{
		X: Clamp(p.X, r.X+padding, r.X+r.Width-padding),
		Y: Clamp(p.Y, r.Y+padding, r.Y+r.Height-padding),
	}
}
