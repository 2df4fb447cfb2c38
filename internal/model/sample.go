package model

import "sort"

// SelectionMethod records why a region is in the sample.
type SelectionMethod string

const (
	SelectionMandatory        SelectionMethod = "mandatory"
	SelectionStratifiedRandom SelectionMethod = "stratified_random"
	SelectionCoverageBoost    SelectionMethod = "coverage_boost"
)

// SampleRecord is a sampled region with its selection method and weight.
type SampleRecord struct {
	Region
	SelectionMethod SelectionMethod `json:"selection_method"`
	SampleWeight    float64         `json:"sample_weight"`
}

// Sample is the allocator output. Soft failures (non-convergent
// rebalancing, coverage shortfall, undersized sample) are reported through
// the flags rather than as errors.
type Sample struct {
	Records             []SampleRecord  `json:"records"`
	Allocation          map[Stratum]int `json:"-"`
	UniverseSize        int             `json:"universe_size"`
	UniversePopulation  int64           `json:"universe_population"`
	SamplePopulation    int64           `json:"sample_population"`
	Coverage            float64         `json:"coverage"`
	CoverageTarget      float64         `json:"coverage_target"`
	CoverageMet         bool            `json:"coverage_met"`
	Converged           bool            `json:"converged"`
	RebalanceIterations int             `json:"rebalance_iterations"`
	BelowMinSize        bool            `json:"below_min_size"`
	Seed                uint64          `json:"seed"`
}

// Len returns the number of sampled regions.
func (s *Sample) Len() int { return len(s.Records) }

// CountByMethod tallies records per selection method.
func (s *Sample) CountByMethod() map[SelectionMethod]int {
	out := make(map[SelectionMethod]int)
	for _, r := range s.Records {
		out[r.SelectionMethod]++
	}
	return out
}

// AllocatedStrata returns the allocated strata in key order.
func (s *Sample) AllocatedStrata() []Stratum {
	keys := make([]Stratum, 0, len(s.Allocation))
	for k := range s.Allocation {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
