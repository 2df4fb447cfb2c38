package sampler

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/metro-sampler/internal/model"
)

func st(label string) model.Stratum {
	return model.Stratum{
		Population:   label,
		Rail:         model.RailLabel,
		Mobility:     model.SharedMobilityLabel,
		CensusRegion: "South",
	}
}

func TestAllocate_Proportional(t *testing.T) {
	sizes := map[model.Stratum]int{st("A"): 10, st("B"): 5, st("C"): 5}
	alloc := Allocate(sizes, 4, 100)

	assert.True(t, alloc.Converged)
	assert.Equal(t, 0, alloc.Iterations)
	assert.Equal(t, map[model.Stratum]int{st("A"): 2, st("B"): 1, st("C"): 1}, alloc.Counts)
}

func TestAllocate_FloorAtOneThenTrimLargest(t *testing.T) {
	sizes := map[model.Stratum]int{st("A"): 100, st("B"): 1, st("C"): 1}
	alloc := Allocate(sizes, 3, 100)

	require.True(t, alloc.Converged)
	assert.Equal(t, 1, alloc.Iterations)
	assert.Equal(t, map[model.Stratum]int{st("A"): 1, st("B"): 1, st("C"): 1}, alloc.Counts)
}

func TestAllocate_UnderAllocatedTiesByKey(t *testing.T) {
	sizes := map[model.Stratum]int{st("C"): 3, st("B"): 3, st("A"): 3}
	alloc := Allocate(sizes, 7, 100)

	require.True(t, alloc.Converged)
	assert.Equal(t, 3, alloc.Counts[st("A")])
	assert.Equal(t, 2, alloc.Counts[st("B")])
	assert.Equal(t, 2, alloc.Counts[st("C")])
}

func TestAllocate_HalfRoundsToEven(t *testing.T) {
	// More strata than slots: no floor, 0.5 rounds down to 0 for both.
	sizes := map[model.Stratum]int{st("A"): 1, st("B"): 1}
	alloc := Allocate(sizes, 1, 100)

	require.True(t, alloc.Converged)
	assert.Equal(t, 1, alloc.Counts[st("A")])
	assert.Equal(t, 0, alloc.Counts[st("B")])
}

func TestAllocate_Exhausted(t *testing.T) {
	sizes := map[model.Stratum]int{st("A"): 1, st("B"): 2}
	alloc := Allocate(sizes, 5, 100)

	assert.False(t, alloc.Converged)
	assert.True(t, alloc.Exhausted)
	assert.Equal(t, 3, alloc.Total())
	assert.Equal(t, 1, alloc.Counts[st("A")])
	assert.Equal(t, 2, alloc.Counts[st("B")])
}

func TestAllocate_ZeroSlots(t *testing.T) {
	sizes := map[model.Stratum]int{st("A"): 4, st("B"): 2}
	alloc := Allocate(sizes, 0, 100)

	assert.True(t, alloc.Converged)
	assert.Zero(t, alloc.Total())
}

func TestAllocate_EmptyPool(t *testing.T) {
	alloc := Allocate(map[model.Stratum]int{}, 5, 100)
	assert.False(t, alloc.Converged)
	assert.True(t, alloc.Exhausted)
	assert.Zero(t, alloc.Total())
}

func TestAllocate_Deterministic(t *testing.T) {
	sizes := map[model.Stratum]int{}
	for i := range 12 {
		sizes[st(fmt.Sprintf("S%02d", i))] = i%4 + 1
	}
	first := Allocate(sizes, 17, 100)
	for range 10 {
		assert.Equal(t, first, Allocate(sizes, 17, 100))
	}
}

// Skewed stratum sizes, many strata and small slot counts.
func TestAllocate_Stress(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := range 500 {
		nStrata := 1 + rng.IntN(40)
		sizes := make(map[model.Stratum]int, nStrata)
		var pool int
		for i := range nStrata {
			var size int
			switch rng.IntN(3) {
			case 0:
				size = 1
			case 1:
				size = 1 + rng.IntN(5)
			default:
				size = 1 + rng.IntN(400)
			}
			sizes[st(fmt.Sprintf("S%03d", i))] = size
			pool += size
		}
		slots := rng.IntN(60)

		alloc := Allocate(sizes, slots, 100)
		name := fmt.Sprintf("trial %d strata=%d slots=%d pool=%d", trial, nStrata, slots, pool)

		assert.Equal(t, min(slots, pool), alloc.Total(), name)
		assert.Equal(t, slots <= pool, alloc.Converged, name)
		assert.LessOrEqual(t, alloc.Iterations, 100, name)
		for k, n := range alloc.Counts {
			assert.GreaterOrEqual(t, n, 0, name)
			assert.LessOrEqual(t, n, sizes[k], name)
			if nStrata <= slots {
				assert.GreaterOrEqual(t, n, 1, name)
			}
		}
	}
}
