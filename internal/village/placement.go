package village

import (
	"github.com/cory-johannsen/notevillage/internal/village/geom"
	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

// spotSearch is a bounded retry-with-expanding-radius placement search.
// Each attempt samples a point within the current radius of Origin, clamps
// it into Bounds, and tests the candidate footprint against every blocked
// rectangle. The radius grows per attempt; exhausting the budget is not an
// error, the caller simply omits the item.
type spotSearch struct {
	// Origin is the search center.
	Origin geom.Point
	// Bounds is the region candidates are clamped into.
	Bounds geom.Rect
	// Width and Height define the candidate footprint.
	Width  float64
	Height float64
	// StartRadius and RadiusGrowth control the expanding search ring.
	StartRadius  float64
	RadiusGrowth float64
	// Attempts is the retry budget.
	Attempts int
	// Spacing pads every collision test.
	Spacing float64
	// Blocked lists footprints candidates must not overlap.
	Blocked []geom.Rect
	// Reject, when non-nil, vetoes a candidate footprint for reasons beyond
	// bounding-box overlap (e.g. plaza clearance).
	Reject func(geom.Rect) bool
}

// run executes the search.
//
// Precondition: Attempts > 0; Bounds must fit the footprint.
// Postcondition: Returns (center, true) for a collision-free placement or
// (Point{}, false) when the attempt budget is exhausted.
func (q spotSearch) run(r *rng.Source) (geom.Point, bool) {
	halfW := q.Width / 2
	halfH := q.Height / 2

	for attempt := 0; attempt < q.Attempts; attempt++ {
		radius := q.StartRadius + float64(attempt)*q.RadiusGrowth

		x, y := r.PointInCircle(q.Origin.X, q.Origin.Y, radius)
		center := geom.Point{X: x, Y: y}
		center.X = geom.Clamp(center.X, q.Bounds.X+halfW, q.Bounds.X+q.Bounds.Width-halfW)
		center.Y = geom.Clamp(center.Y, q.Bounds.Y+halfH, q.Bounds.Y+q.Bounds.Height-halfH)

		candidate := geom.RectAround(center, q.Width, q.Height)
		if geom.OverlapsAny(candidate, q.Blocked, q.Spacing) {
			continue
		}
		if q.Reject != nil && q.Reject(candidate) {
			continue
		}
		return center, true
	}
	return geom.Point{}, false
}
