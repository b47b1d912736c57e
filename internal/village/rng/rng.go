// Package rng provides the deterministic randomness source for village
// generation. Unlike crypto-backed sources, every sequence is reproducible
// from its seed: the same seed yields the same infinite output sequence
// across runs and platforms, which is what makes regenerated villages stable.
package rng

import "math"

// lcgModulus, lcgMultiplier, and lcgIncrement are the parameters of the
// linear-congruential recurrence state' = (a*state + c) mod m.
const (
	lcgModulus    int64 = 1 << 31
	lcgMultiplier int64 = 1103515245
	lcgIncrement  int64 = 12345
)

// Source is a deterministic pseudo-random number generator.
//
// Invariant: two Sources with equal state produce identical sequences.
// Source is NOT safe for concurrent use; the generator is single-threaded.
type Source struct {
	state int64
}

// New creates a Source from a numeric seed.
//
// Postcondition: the initial state is in [0, 2^31).
func New(seed int64) *Source {
	s := &Source{}
	s.SetState(seed)
	return s
}

// NewFromString creates a Source from a string seed hashed with a polynomial
// rolling hash into a 31-bit magnitude.
//
// Postcondition: equal strings yield equal initial states.
func NewFromString(seed string) *Source {
	return New(HashString(seed))
}

// HashString reduces a string to a non-negative 31-bit integer using a
// base-31 polynomial rolling hash.
func HashString(s string) int64 {
	var h int64
	for _, r := range s {
		h = (h*31 + int64(r)) % lcgModulus
	}
	if h < 0 {
		h += lcgModulus
	}
	return h
}

// State returns the current internal state for checkpointing.
func (s *Source) State() int64 {
	return s.state
}

// SetState restores (or initializes) the internal state.
//
// Postcondition: State() is in [0, 2^31).
func (s *Source) SetState(state int64) {
	state %= lcgModulus
	if state < 0 {
		state += lcgModulus
	}
	s.state = state
}

// Next advances the recurrence once and returns a float64 in [0, 1).
// Every call advances the state; there is no caching.
func (s *Source) Next() float64 {
	s.state = (lcgMultiplier*s.state + lcgIncrement) % lcgModulus
	return float64(s.state) / float64(lcgModulus)
}

// IntRange returns an int in [min, max], inclusive of both bounds.
//
// Precondition: min <= max.
func (s *Source) IntRange(min, max int) int {
	return min + int(s.Next()*float64(max-min+1))
}

// FloatRange returns a float64 in [min, max).
//
// Precondition: min <= max.
func (s *Source) FloatRange(min, max float64) float64 {
	return min + s.Next()*(max-min)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool {
	return s.Next() < p
}

// Pick returns a uniformly chosen element of items.
//
// Postcondition: Returns (element, true) for non-empty input, or the zero
// value and false for empty input.
func Pick[T any](s *Source, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[s.IntRange(0, len(items)-1)], true
}

// Shuffle permutes items in place with a Fisher-Yates walk and returns the
// same slice.
func Shuffle[T any](s *Source, items []T) []T {
	for i := len(items) - 1; i > 0; i-- {
		j := s.IntRange(0, i)
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// PointInCircle returns a point uniformly distributed over the disk of the
// given radius centered at (cx, cy). The radius is sampled as sqrt(u)*r so
// the distribution is uniform over area, not over distance.
func (s *Source) PointInCircle(cx, cy, r float64) (float64, float64) {
	theta := s.Next() * 2 * math.Pi
	dist := math.Sqrt(s.Next()) * r
	return cx + dist*math.Cos(theta), cy + dist*math.Sin(theta)
}

// PointInRing returns a point uniformly distributed over the annulus between
// innerR and outerR centered at (cx, cy), area-weighted so the outer band is
// not undersampled.
//
// Precondition: 0 <= innerR <= outerR.
func (s *Source) PointInRing(cx, cy, innerR, outerR float64) (float64, float64) {
	theta := s.Next() * 2 * math.Pi
	dist := math.Sqrt(innerR*innerR + s.Next()*(outerR*outerR-innerR*innerR))
	return cx + dist*math.Cos(theta), cy + dist*math.Sin(theta)
}

// PointInWedge returns a point uniformly distributed over the angular wedge
// [startAngle, endAngle] of the annulus between innerR and outerR.
//
// Precondition: 0 <= innerR <= outerR; angles are radians.
func (s *Source) PointInWedge(cx, cy, innerR, outerR, startAngle, endAngle float64) (float64, float64) {
	theta := startAngle + s.Next()*(endAngle-startAngle)
	dist := math.Sqrt(innerR*innerR + s.Next()*(outerR*outerR-innerR*innerR))
	return cx + dist*math.Cos(theta), cy + dist*math.Sin(theta)
}

// PointInRect returns a point uniformly distributed over the axis-aligned
// rectangle at (x, y) with the given width and height, inset on all sides by
// padding.
//
// Precondition: width > 2*padding and height > 2*padding.
func (s *Source) PointInRect(x, y, width, height, padding float64) (float64, float64) {
	px := s.FloatRange(x+padding, x+width-padding)
	py := s.FloatRange(y+padding, y+height-padding)
	return px, py
}
