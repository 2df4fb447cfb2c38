package strata

import (
	"strings"

	"github.com/sells-group/metro-sampler/internal/model"
)

// Assigner maps regions to strata. It holds only read-only lookup tables.
type Assigner struct {
	buckets       []Bucket
	stateToRegion map[string]string
}

// NewAssigner builds an Assigner from a table. The table should already
// be validated; an empty bucket list assigns every region to "".
func NewAssigner(t Table) *Assigner {
	a := &Assigner{
		buckets:       append([]Bucket(nil), t.Buckets...),
		stateToRegion: make(map[string]string),
	}
	for region, states := range t.CensusRegions {
		for _, st := range states {
			a.stateToRegion[strings.ToUpper(st)] = region
		}
	}
	return a
}

// PopulationBucket returns the label of the first bucket containing pop,
// falling back to the last bucket.
func (a *Assigner) PopulationBucket(pop int64) string {
	for _, b := range a.buckets {
		if b.Contains(pop) {
			return b.Label
		}
	}
	if len(a.buckets) == 0 {
		return ""
	}
	return a.buckets[len(a.buckets)-1].Label
}

// CensusRegion returns the census region for a state abbreviation.
func (a *Assigner) CensusRegion(state string) string {
	if r, ok := a.stateToRegion[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return r
	}
	return model.UnknownCensusRegion
}

// Stratum computes the composite key for a region.
func (a *Assigner) Stratum(r model.Region) model.Stratum {
	region := r.CensusRegion
	if region == "" {
		region = a.CensusRegion(r.State)
	}
	rail := model.NoRailLabel
	if r.HasRail {
		rail = model.RailLabel
	}
	sm := model.NoSharedMobilityLabel
	if r.HasSharedMobility {
		sm = model.SharedMobilityLabel
	}
	return model.Stratum{
		Population:   a.PopulationBucket(r.Population),
		Rail:         rail,
		Mobility:     sm,
		CensusRegion: region,
	}
}

// Assign returns a copy of r with its census region and stratum filled in.
func (a *Assigner) Assign(r model.Region) model.Region {
	if r.CensusRegion == "" {
		r.CensusRegion = a.CensusRegion(r.State)
	}
	r.Stratum = a.Stratum(r)
	return r
}

// AssignAll assigns every region, returning a new slice.
func (a *Assigner) AssignAll(regions []model.Region) []model.Region {
	out := make([]model.Region, len(regions))
	for i, r := range regions {
		out[i] = a.Assign(r)
	}
	return out
}
