package rng_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/notevillage/internal/village/rng"
)

// TestNext_InUnitInterval verifies the postcondition: Next() stays in [0, 1)
// over a long run.
func TestNext_InUnitInterval(t *testing.T) {
	s := rng.New(42)
	for i := 0; i < 10_000; i++ {
		v := s.Next()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

// TestNext_SameSeedSameSequence verifies the determinism invariant: two
// Sources with the same seed produce identical sequences.
func TestNext_SameSeedSameSequence(t *testing.T) {
	a := rng.New(42)
	b := rng.New(42)
	for i := 0; i < 1000; i++ {
		require.Equal(t, a.Next(), b.Next(), "sequence diverged at step %d", i)
	}
}

// TestNext_DifferentSeedsDiverge verifies that distinct seeds produce
// distinct sequences within a few draws.
func TestNext_DifferentSeedsDiverge(t *testing.T) {
	a := rng.New(1)
	b := rng.New(2)
	diverged := false
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "seeds 1 and 2 must diverge within 10 draws")
}

// TestNewFromString_Deterministic verifies that equal string seeds yield
// equal sequences and that HashString stays in [0, 2^31).
func TestNewFromString_Deterministic(t *testing.T) {
	a := rng.NewFromString("abc")
	b := rng.NewFromString("abc")
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}

	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.String().Draw(rt, "seed")
		h := rng.HashString(s)
		assert.GreaterOrEqual(rt, h, int64(0))
		assert.Less(rt, h, int64(1)<<31)
	})
}

// TestIntRange_InclusiveBounds verifies both bounds are reachable and no
// value falls outside them.
func TestIntRange_InclusiveBounds(t *testing.T) {
	s := rng.New(7)
	seen := map[int]bool{}
	for i := 0; i < 10_000; i++ {
		v := s.IntRange(1, 6)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 6)
		seen[v] = true
	}
	assert.Len(t, seen, 6, "all six faces must occur over 10k draws")
}

// TestIntRange_Property checks the range contract for arbitrary bounds.
func TestIntRange_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		min := rapid.IntRange(-1000, 1000).Draw(rt, "min")
		span := rapid.IntRange(0, 1000).Draw(rt, "span")
		max := min + span

		s := rng.New(seed)
		for i := 0; i < 50; i++ {
			v := s.IntRange(min, max)
			assert.GreaterOrEqual(rt, v, min)
			assert.LessOrEqual(rt, v, max)
		}
	})
}

// TestFloatRange_HalfOpen verifies values land in [min, max).
func TestFloatRange_HalfOpen(t *testing.T) {
	s := rng.New(13)
	for i := 0; i < 1000; i++ {
		v := s.FloatRange(-2.5, 4.5)
		require.GreaterOrEqual(t, v, -2.5)
		require.Less(t, v, 4.5)
	}
}

// TestBool_Extremes verifies the degenerate probabilities.
func TestBool_Extremes(t *testing.T) {
	s := rng.New(99)
	for i := 0; i < 100; i++ {
		assert.False(t, s.Bool(0))
	}
	for i := 0; i < 100; i++ {
		assert.True(t, s.Bool(1))
	}
}

// TestPick_EmptyAndNonEmpty verifies the ok-bool contract for Pick.
func TestPick_EmptyAndNonEmpty(t *testing.T) {
	s := rng.New(3)

	_, ok := rng.Pick(s, []string(nil))
	assert.False(t, ok, "empty input must report !ok")

	items := []string{"a", "b", "c"}
	for i := 0; i < 100; i++ {
		v, ok := rng.Pick(s, items)
		require.True(t, ok)
		assert.Contains(t, items, v)
	}
}

// TestShuffle_PreservesMultiset verifies Shuffle returns the same slice with
// the same elements, for arbitrary inputs.
func TestShuffle_PreservesMultiset(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		orig := rapid.SliceOf(rapid.Int()).Draw(rt, "items")

		items := make([]int, len(orig))
		copy(items, orig)

		s := rng.New(seed)
		out := rng.Shuffle(s, items)

		require.Len(t, out, len(orig))
		a := append([]int(nil), orig...)
		b := append([]int(nil), out...)
		sort.Ints(a)
		sort.Ints(b)
		assert.Equal(rt, a, b, "shuffle must preserve the element multiset")
	})
}

// TestShuffle_Deterministic verifies the same seed yields the same permutation.
func TestShuffle_Deterministic(t *testing.T) {
	a := rng.Shuffle(rng.New(5), []int{1, 2, 3, 4, 5, 6, 7, 8})
	b := rng.Shuffle(rng.New(5), []int{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, a, b)
}

// TestPointInCircle_WithinRadius verifies every sampled point lies within
// the requested disk.
func TestPointInCircle_WithinRadius(t *testing.T) {
	s := rng.New(11)
	for i := 0; i < 5000; i++ {
		x, y := s.PointInCircle(10, -20, 7)
		d := math.Hypot(x-10, y+20)
		require.LessOrEqual(t, d, 7.0)
	}
}

// TestPointInCircle_AreaUniform is a coarse check that disk sampling is
// uniform over area: the inner half-radius disk covers a quarter of the area,
// so roughly a quarter of samples should land there.
func TestPointInCircle_AreaUniform(t *testing.T) {
	s := rng.New(17)
	const n = 20_000
	inner := 0
	for i := 0; i < n; i++ {
		x, y := s.PointInCircle(0, 0, 10)
		if math.Hypot(x, y) <= 5 {
			inner++
		}
	}
	frac := float64(inner) / n
	assert.InDelta(t, 0.25, frac, 0.02,
		"half-radius disk must receive ~25%% of area-uniform samples")
}

// TestPointInRing_WithinBand verifies ring samples stay in [innerR, outerR].
func TestPointInRing_WithinBand(t *testing.T) {
	s := rng.New(23)
	for i := 0; i < 5000; i++ {
		x, y := s.PointInRing(0, 0, 4, 9)
		d := math.Hypot(x, y)
		require.GreaterOrEqual(t, d, 4.0)
		require.LessOrEqual(t, d, 9.0)
	}
}

// TestPointInWedge_WithinWedge verifies wedge samples respect both the radial
// band and the angular bounds.
func TestPointInWedge_WithinWedge(t *testing.T) {
	s := rng.New(29)
	for i := 0; i < 5000; i++ {
		x, y := s.PointInWedge(0, 0, 2, 6, 0, math.Pi/2)
		d := math.Hypot(x, y)
		require.GreaterOrEqual(t, d, 2.0)
		require.LessOrEqual(t, d, 6.0)
		theta := math.Atan2(y, x)
		require.GreaterOrEqual(t, theta, 0.0)
		require.LessOrEqual(t, theta, math.Pi/2)
	}
}

// TestPointInRect_RespectsPadding verifies rectangle samples stay inside the
// padded interior.
func TestPointInRect_RespectsPadding(t *testing.T) {
	s := rng.New(31)
	for i := 0; i < 5000; i++ {
		x, y := s.PointInRect(100, 200, 50, 40, 5)
		require.GreaterOrEqual(t, x, 105.0)
		require.Less(t, x, 145.0)
		require.GreaterOrEqual(t, y, 205.0)
		require.Less(t, y, 235.0)
	}
}

// TestStateRoundtrip verifies State/SetState checkpointing: restoring a saved
// state replays the identical tail sequence.
func TestStateRoundtrip(t *testing.T) {
	s := rng.New(42)
	for i := 0; i < 10; i++ {
		s.Next()
	}
	saved := s.State()

	var first []float64
	for i := 0; i < 20; i++ {
		first = append(first, s.Next())
	}

	s.SetState(saved)
	for i := 0; i < 20; i++ {
		require.Equal(t, first[i], s.Next(), "replay diverged at step %d", i)
	}
}
