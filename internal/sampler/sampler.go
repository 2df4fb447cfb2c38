// Package sampler selects a reproducible, population-weighted stratified
// sample of regions.
package sampler

import (
	"hash/fnv"
	"math/rand/v2"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/model"
)

// RandFactory returns the random source used to draw from one stratum.
// Implementations must be deterministic for a given stratum.
type RandFactory func(model.Stratum) *rand.Rand

// SeededRand derives one PCG stream per stratum from the run seed and the
// stratum key, so draws do not depend on the order strata are visited.
func SeededRand(seed uint64) RandFactory {
	return func(s model.Stratum) *rand.Rand {
		h := fnv.New64a()
		_, _ = h.Write([]byte(s.String()))
		return rand.New(rand.NewPCG(seed, h.Sum64()))
	}
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithRandFactory overrides the per-stratum random source.
func WithRandFactory(f RandFactory) Option {
	return func(s *Sampler) {
		if f != nil {
			s.rand = f
		}
	}
}

// Sampler selects samples from a stratified universe.
type Sampler struct {
	cfg  Config
	rand RandFactory
}

// New validates cfg and creates a Sampler.
func New(cfg Config, opts ...Option) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sampler{cfg: cfg, rand: SeededRand(cfg.Seed)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the sampler configuration.
func (s *Sampler) Config() Config { return s.cfg }

// Select draws a sample from universe. Every region must carry a stratum.
// The input slice is not modified and its order does not affect the result.
//
// Selection runs in four phases: the largest regions are taken outright,
// the remaining slots are allocated across strata and drawn at random,
// the largest unselected regions are added until the coverage target is
// met, and design weights are computed from the final stratum counts.
func (s *Sampler) Select(universe []model.Region) (*model.Sample, error) {
	if len(universe) == 0 {
		return nil, eris.Wrap(ErrInvalidConfig, "empty universe")
	}

	regions := make([]model.Region, len(universe))
	copy(regions, universe)
	seen := make(map[string]struct{}, len(regions))
	var totalPop int64
	for _, r := range regions {
		if r.Stratum.IsZero() {
			return nil, eris.Wrapf(ErrInvalidConfig, "region %s has no stratum", r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, eris.Wrapf(ErrInvalidConfig, "duplicate region id %s", r.ID)
		}
		if r.Population < 0 {
			return nil, eris.Wrapf(ErrInvalidConfig, "region %s has negative population %d", r.ID, r.Population)
		}
		seen[r.ID] = struct{}{}
		totalPop += r.Population
	}
	sortByPopulation(regions)

	log := zap.L().With(zap.String("component", "sampler"), zap.Uint64("seed", s.cfg.Seed))

	nMandatory := min(s.cfg.MandatoryTopN, len(regions))
	records := make([]model.SampleRecord, 0, s.cfg.MaxSize)
	for _, r := range regions[:nMandatory] {
		records = append(records, model.SampleRecord{Region: r, SelectionMethod: model.SelectionMandatory})
	}

	pool := make(map[model.Stratum][]model.Region)
	for _, r := range regions[nMandatory:] {
		pool[r.Stratum] = append(pool[r.Stratum], r)
	}
	sizes := make(map[model.Stratum]int, len(pool))
	for k, rs := range pool {
		sizes[k] = len(rs)
	}

	slots := s.cfg.TargetSize - s.cfg.MandatoryTopN
	alloc := Allocate(sizes, slots, s.cfg.MaxRebalanceIterations)
	if !alloc.Converged {
		log.Warn("allocation did not converge",
			zap.Int("slots", slots),
			zap.Int("allocated", alloc.Total()),
			zap.Int("iterations", alloc.Iterations),
			zap.Bool("exhausted", alloc.Exhausted),
		)
	}

	for _, k := range sortedStrata(pool) {
		n := alloc.Counts[k]
		if n <= 0 {
			continue
		}
		candidates := pool[k]
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
		for _, r := range draw(s.rand(k), candidates, n) {
			records = append(records, model.SampleRecord{Region: r, SelectionMethod: model.SelectionStratifiedRandom})
		}
	}

	selected := make(map[string]struct{}, len(records))
	var samplePop int64
	for _, rec := range records {
		selected[rec.ID] = struct{}{}
		samplePop += rec.Population
	}

	for _, r := range regions {
		if coverage(samplePop, totalPop) >= s.cfg.MinCoverageFraction || len(records) >= s.cfg.MaxSize {
			break
		}
		if _, ok := selected[r.ID]; ok {
			continue
		}
		if r.Population <= 0 {
			break
		}
		records = append(records, model.SampleRecord{Region: r, SelectionMethod: model.SelectionCoverageBoost})
		selected[r.ID] = struct{}{}
		samplePop += r.Population
	}

	assignWeights(records, regions)
	sort.Slice(records, func(i, j int) bool {
		if records[i].Population != records[j].Population {
			return records[i].Population > records[j].Population
		}
		return records[i].ID < records[j].ID
	})

	cov := coverage(samplePop, totalPop)
	out := &model.Sample{
		Records:             records,
		Allocation:          alloc.Counts,
		UniverseSize:        len(regions),
		UniversePopulation:  totalPop,
		SamplePopulation:    samplePop,
		Coverage:            cov,
		CoverageTarget:      s.cfg.MinCoverageFraction,
		CoverageMet:         cov >= s.cfg.MinCoverageFraction,
		Converged:           alloc.Converged,
		RebalanceIterations: alloc.Iterations,
		BelowMinSize:        len(records) < s.cfg.MinSize,
		Seed:                s.cfg.Seed,
	}

	if !out.CoverageMet {
		log.Warn("coverage target not met",
			zap.Float64("coverage", cov),
			zap.Float64("target", s.cfg.MinCoverageFraction),
		)
	}
	if out.BelowMinSize {
		log.Warn("sample below minimum size",
			zap.Int("size", len(records)),
			zap.Int("min_size", s.cfg.MinSize),
		)
	}
	log.Info("sample selected",
		zap.Int("size", len(records)),
		zap.Int("universe", len(regions)),
		zap.Float64("coverage", cov),
		zap.Int("strata", len(pool)),
	)
	return out, nil
}

// draw picks n regions without replacement using a partial Fisher-Yates
// shuffle over an index permutation.
func draw(rng *rand.Rand, candidates []model.Region, n int) []model.Region {
	if n >= len(candidates) {
		out := make([]model.Region, len(candidates))
		copy(out, candidates)
		return out
	}
	idx := make([]int, len(candidates))
	for i := range idx {
		idx[i] = i
	}
	out := make([]model.Region, 0, n)
	for i := range n {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, candidates[idx[i]])
	}
	return out
}

// assignWeights sets each record's design weight to the stratum universe
// count over the stratum sample count. Mandatory records weigh 1.
func assignWeights(records []model.SampleRecord, universe []model.Region) {
	universeCount := make(map[model.Stratum]int)
	for _, r := range universe {
		universeCount[r.Stratum]++
	}
	sampleCount := make(map[model.Stratum]int)
	for _, rec := range records {
		sampleCount[rec.Stratum]++
	}
	for i := range records {
		if records[i].SelectionMethod == model.SelectionMandatory {
			records[i].SampleWeight = 1.0
			continue
		}
		records[i].SampleWeight = float64(universeCount[records[i].Stratum]) / float64(sampleCount[records[i].Stratum])
	}
}

// coverage is the sampled share of universe population. An all-zero
// universe is fully covered.
func coverage(sampled, total int64) float64 {
	if total <= 0 {
		return 1
	}
	return float64(sampled) / float64(total)
}

func sortByPopulation(regions []model.Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Population != regions[j].Population {
			return regions[i].Population > regions[j].Population
		}
		return regions[i].ID < regions[j].ID
	})
}
