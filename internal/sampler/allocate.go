package sampler

import (
	"math"
	"sort"

	"github.com/sells-group/metro-sampler/internal/model"
)

// Allocation is the per-stratum draw plan for the non-mandatory pool.
type Allocation struct {
	Counts     map[model.Stratum]int
	Iterations int
	// Converged is true when the allocations sum exactly to the slots.
	Converged bool
	// Exhausted is true when every stratum was fully allocated and slots
	// remained.
	Exhausted bool
}

// Total sums the per-stratum allocations.
func (a Allocation) Total() int {
	var n int
	for _, c := range a.Counts {
		n += c
	}
	return n
}

// Allocate distributes slots across strata in proportion to their sizes,
// then rebalances until the allocations sum to slots. sizes maps each
// stratum present in the pool to its region count.
//
// Every stratum gets at least one slot when there are at least as many
// slots as strata. No stratum is allocated more than it holds. Rebalancing
// runs at most maxIter passes; a non-convergent result is returned as is.
func Allocate(sizes map[model.Stratum]int, slots, maxIter int) Allocation {
	keys := sortedStrata(sizes)
	counts := make(map[model.Stratum]int, len(keys))

	var poolSize int
	for _, k := range keys {
		poolSize += sizes[k]
	}

	for _, k := range keys {
		size := sizes[k]
		var raw int
		if poolSize > 0 {
			raw = int(math.RoundToEven(float64(slots) * float64(size) / float64(poolSize)))
		}
		if len(keys) <= slots {
			raw = max(1, raw)
		}
		counts[k] = min(size, max(0, raw))
	}

	alloc := Allocation{Counts: counts}
	for alloc.Iterations < maxIter {
		total := alloc.Total()
		if total == slots {
			break
		}
		alloc.Iterations++

		if total > slots {
			for total > slots {
				k, ok := largestAllocation(keys, counts)
				if !ok {
					break
				}
				counts[k]--
				total--
			}
			continue
		}

		for total < slots {
			k, ok := mostRoom(keys, sizes, counts)
			if !ok {
				alloc.Exhausted = true
				break
			}
			counts[k]++
			total++
		}
		if alloc.Exhausted {
			break
		}
	}

	alloc.Converged = alloc.Total() == slots
	return alloc
}

// largestAllocation picks the stratum with the largest positive allocation,
// breaking ties by stratum key order.
func largestAllocation(keys []model.Stratum, counts map[model.Stratum]int) (model.Stratum, bool) {
	var best model.Stratum
	bestN := 0
	for _, k := range keys {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, bestN > 0
}

// mostRoom picks the stratum with the most unallocated regions, breaking
// ties by stratum key order.
func mostRoom(keys []model.Stratum, sizes, counts map[model.Stratum]int) (model.Stratum, bool) {
	var best model.Stratum
	bestRoom := 0
	for _, k := range keys {
		if room := sizes[k] - counts[k]; room > bestRoom {
			best, bestRoom = k, room
		}
	}
	return best, bestRoom > 0
}

func sortedStrata[V any](m map[model.Stratum]V) []model.Stratum {
	keys := make([]model.Stratum, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
