// Package strata assigns regions to composite sampling strata.
package strata

import (
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Bucket is a half-open population range [Min, Max). Max of zero means
// the bucket is unbounded above.
type Bucket struct {
	Label string `yaml:"label" json:"label"`
	Min   int64  `yaml:"min" json:"min"`
	Max   int64  `yaml:"max" json:"max"`
}

// Contains reports whether pop falls in the bucket.
func (b Bucket) Contains(pop int64) bool {
	if pop < b.Min {
		return false
	}
	return b.Max == 0 || pop < b.Max
}

func (b Bucket) upper() int64 {
	if b.Max == 0 {
		return math.MaxInt64
	}
	return b.Max
}

// Table holds the ordered population buckets and the census-region to
// state lookup. The last bucket is the fallback for populations that no
// bucket contains.
type Table struct {
	Buckets       []Bucket            `yaml:"population_buckets" json:"population_buckets"`
	CensusRegions map[string][]string `yaml:"census_regions" json:"census_regions"`
}

// DefaultTable returns the built-in Mega/Large/Medium/Small buckets and the
// four Census Bureau regions.
func DefaultTable() Table {
	return Table{
		Buckets: []Bucket{
			{Label: "Mega", Min: 5_000_000},
			{Label: "Large", Min: 1_000_000, Max: 5_000_000},
			{Label: "Medium", Min: 500_000, Max: 1_000_000},
			{Label: "Small", Min: 0, Max: 500_000},
		},
		CensusRegions: map[string][]string{
			"Northeast": {
				"CT", "ME", "MA", "NH", "RI", "VT",
				"NJ", "NY", "PA",
			},
			"Midwest": {
				"IL", "IN", "MI", "OH", "WI",
				"IA", "KS", "MN", "MO", "NE", "ND", "SD",
			},
			"South": {
				"DE", "FL", "GA", "MD", "NC", "SC", "VA", "DC", "WV",
				"AL", "KY", "MS", "TN",
				"AR", "LA", "OK", "TX",
			},
			"West": {
				"AZ", "CO", "ID", "MT", "NV", "NM", "UT", "WY",
				"AK", "CA", "HI", "OR", "WA",
			},
		},
	}
}

// Validate checks that the table can assign every region.
func (t Table) Validate() error {
	if len(t.Buckets) == 0 {
		return eris.New("strata: at least one population bucket is required")
	}
	seen := make(map[string]bool, len(t.Buckets))
	for _, b := range t.Buckets {
		if b.Label == "" {
			return eris.New("strata: population bucket label is empty")
		}
		if seen[b.Label] {
			return eris.Errorf("strata: duplicate population bucket %q", b.Label)
		}
		seen[b.Label] = true
		if b.Min < 0 {
			return eris.Errorf("strata: bucket %q has negative lower bound", b.Label)
		}
		if b.Min >= b.upper() {
			return eris.Errorf("strata: bucket %q has empty range [%d, %d)", b.Label, b.Min, b.Max)
		}
	}
	states := make(map[string]string)
	for region, list := range t.CensusRegions {
		for _, st := range list {
			if prev, ok := states[st]; ok && prev != region {
				return eris.Errorf("strata: state %s mapped to both %s and %s", st, prev, region)
			}
			states[st] = region
		}
	}
	return nil
}

// LoadTable reads a strata table from a YAML file. Sections missing from
// the file keep their built-in defaults.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, eris.Wrapf(err, "strata: read table %s", path)
	}

	var parsed Table
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Table{}, eris.Wrap(err, "strata: parse table")
	}

	t := DefaultTable()
	if len(parsed.Buckets) > 0 {
		t.Buckets = parsed.Buckets
	}
	if len(parsed.CensusRegions) > 0 {
		t.CensusRegions = parsed.CensusRegions
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}
