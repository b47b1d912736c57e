package village

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/notevillage/internal/village/geom"
	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

func baseSearch() spotSearch {
	return spotSearch{
		Origin:       geom.Point{X: 200, Y: 200},
		Bounds:       geom.Rect{X: 0, Y: 0, Width: 400, Height: 400},
		Width:        64,
		Height:       64,
		StartRadius:  50,
		RadiusGrowth: 20,
		Attempts:     20,
		Spacing:      8,
	}
}

func TestSpotSearch_OpenGroundSucceeds(t *testing.T) {
	q := baseSearch()
	pos, ok := q.run(rng.New(1))
	require.True(t, ok)

	footprint := geom.RectAround(pos, q.Width, q.Height)
	assert.True(t, q.Bounds.Contains(footprint.Center(), q.Width/2),
		"footprint must stay inside bounds")
}

func TestSpotSearch_AvoidsBlocked(t *testing.T) {
	q := baseSearch()
	q.Blocked = []geom.Rect{{X: 150, Y: 150, Width: 100, Height: 100}}

	pos, ok := q.run(rng.New(2))
	require.True(t, ok)
	candidate := geom.RectAround(pos, q.Width, q.Height)
	assert.False(t, geom.OverlapsAny(candidate, q.Blocked, q.Spacing))
}

// TestSpotSearch_ExhaustsBudget verifies a fully blocked region returns
// not-found instead of looping or erroring.
func TestSpotSearch_ExhaustsBudget(t *testing.T) {
	q := baseSearch()
	// One obstacle covering the whole searchable region.
	q.Blocked = []geom.Rect{{X: -100, Y: -100, Width: 600, Height: 600}}

	_, ok := q.run(rng.New(3))
	assert.False(t, ok)
}

func TestSpotSearch_RejectVetoes(t *testing.T) {
	q := baseSearch()
	q.Reject = func(geom.Rect) bool { return true }

	_, ok := q.run(rng.New(4))
	assert.False(t, ok, "an always-true Reject must exhaust the budget")
}

// TestSpotSearch_RadiusExpands verifies the search widens over attempts: with
// the origin region blocked, a placement is still found further out.
func TestSpotSearch_RadiusExpands(t *testing.T) {
	q := baseSearch()
	q.Attempts = 100
	// Block a region around the origin wider than StartRadius.
	q.Blocked = []geom.Rect{{X: 100, Y: 100, Width: 200, Height: 200}}

	pos, ok := q.run(rng.New(5))
	require.True(t, ok)
	d := math.Hypot(pos.X-q.Origin.X, pos.Y-q.Origin.Y)
	assert.Greater(t, d, 50.0, "placement must land beyond the blocked core")
}

func TestSpotSearch_Deterministic(t *testing.T) {
	q := baseSearch()
	a, okA := q.run(rng.New(42))
	b, okB := q.run(rng.New(42))
	require.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}

func TestPlaceWithSampler_SkipsCollisions(t *testing.T) {
	r := rng.New(7)
	bounds := geom.Rect{X: 0, Y: 0, Width: 400, Height: 400}
	blocked := []geom.Rect{{X: 0, Y: 0, Width: 400, Height: 200}}

	// Sampler alternates between a blocked and a free point.
	calls := 0
	sampler := func() geom.Point {
		calls++
		if calls%2 == 1 {
			return geom.Point{X: 200, Y: 100} // inside blocked half
		}
		return geom.Point{X: 200, Y: 300}
	}

	pos, ok := placeWithSampler(r, sampler, bounds, 20, blocked, nil)
	require.True(t, ok)
	assert.Equal(t, geom.Point{X: 200, Y: 300}, pos)
}

func TestPlaceWithSampler_BoundedAttempts(t *testing.T) {
	r := rng.New(8)
	bounds := geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}
	blocked := []geom.Rect{{X: -50, Y: -50, Width: 200, Height: 200}}

	calls := 0
	sampler := func() geom.Point {
		calls++
		return geom.Point{X: 50, Y: 50}
	}

	_, ok := placeWithSampler(r, sampler, bounds, 20, blocked, nil)
	assert.False(t, ok)
	assert.Equal(t, decorationAttempts, calls, "search must stop at the attempt budget")
}
