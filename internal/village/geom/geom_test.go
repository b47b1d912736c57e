package geom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/notevillage/internal/village/geom"
)

func TestRect_Center(t *testing.T) {
	r := geom.Rect{X: 10, Y: 20, Width: 40, Height: 60}
	assert.Equal(t, geom.Point{X: 30, Y: 50}, r.Center())
}

func TestRect_Contains(t *testing.T) {
	r := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}

	assert.True(t, r.Contains(geom.Point{X: 50, Y: 50}, 0))
	assert.True(t, r.Contains(geom.Point{X: 0, Y: 0}, 0), "edge is inside at zero padding")
	assert.False(t, r.Contains(geom.Point{X: 5, Y: 50}, 10), "padding excludes the border band")
	assert.False(t, r.Contains(geom.Point{X: 101, Y: 50}, 0))
}

func TestRect_Inset(t *testing.T) {
	r := geom.Rect{X: 10, Y: 10, Width: 100, Height: 80}
	got := r.Inset(5)
	assert.Equal(t, geom.Rect{X: 15, Y: 15, Width: 90, Height: 70}, got)
}

func TestOverlaps_Basic(t *testing.T) {
	a := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := geom.Rect{X: 5, Y: 5, Width: 10, Height: 10}
	c := geom.Rect{X: 20, Y: 20, Width: 10, Height: 10}

	assert.True(t, geom.Overlaps(a, b, 0))
	assert.False(t, geom.Overlaps(a, c, 0))
	// The spacing pad closes the 10-unit gap between a and c.
	assert.True(t, geom.Overlaps(a, c, 6))
}

// TestOverlaps_SpacingPadsBothBoxes pins the collision semantics: spacing is
// added to each box, so two boxes separated by less than 2*spacing collide.
func TestOverlaps_SpacingPadsBothBoxes(t *testing.T) {
	a := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	c := geom.Rect{X: 20, Y: 0, Width: 10, Height: 10} // 10-unit gap

	assert.True(t, geom.Overlaps(a, c, 7), "a 10-unit gap is closed once both pads sum past it")
	assert.False(t, geom.Overlaps(a, c, 5), "pads that exactly meet in the gap only touch")
	assert.False(t, geom.Overlaps(a, c, 4), "pads smaller than half the gap leave clearance")
}

func TestOverlaps_TouchingEdgesDoNotOverlap(t *testing.T) {
	a := geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := geom.Rect{X: 10, Y: 0, Width: 10, Height: 10}
	assert.False(t, geom.Overlaps(a, b, 0), "shared edge is not an overlap")
}

// TestOverlaps_Symmetric verifies the overlap test is symmetric for
// arbitrary rectangle pairs and spacings.
func TestOverlaps_Symmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rect := func(label string) geom.Rect {
			return geom.Rect{
				X:      rapid.Float64Range(-100, 100).Draw(rt, label+"x"),
				Y:      rapid.Float64Range(-100, 100).Draw(rt, label+"y"),
				Width:  rapid.Float64Range(0, 50).Draw(rt, label+"w"),
				Height: rapid.Float64Range(0, 50).Draw(rt, label+"h"),
			}
		}
		a := rect("a")
		b := rect("b")
		spacing := rapid.Float64Range(0, 10).Draw(rt, "spacing")
		assert.Equal(rt, geom.Overlaps(a, b, spacing), geom.Overlaps(b, a, spacing))
	})
}

func TestOverlapsAny(t *testing.T) {
	placed := []geom.Rect{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 50, Y: 50, Width: 10, Height: 10},
	}
	assert.True(t, geom.OverlapsAny(geom.Rect{X: 5, Y: 5, Width: 5, Height: 5}, placed, 0))
	assert.False(t, geom.OverlapsAny(geom.Rect{X: 25, Y: 25, Width: 5, Height: 5}, placed, 0))
	assert.False(t, geom.OverlapsAny(geom.Rect{X: 25, Y: 25, Width: 5, Height: 5}, nil, 0))
}

func TestRectAround(t *testing.T) {
	r := geom.RectAround(geom.Point{X: 50, Y: 50}, 20, 10)
	assert.Equal(t, geom.Rect{X: 40, Y: 45, Width: 20, Height: 10}, r)
	assert.Equal(t, geom.Point{X: 50, Y: 50}, r.Center())
}

func TestClampToRect(t *testing.T) {
	r := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	got := geom.ClampToRect(geom.Point{X: -20, Y: 150}, r, 10)
	assert.Equal(t, geom.Point{X: 10, Y: 90}, got)

	inside := geom.Point{X: 40, Y: 60}
	assert.Equal(t, inside, geom.ClampToRect(inside, r, 10))
}
