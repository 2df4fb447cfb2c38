package resolve

import (
	"sort"

	"github.com/sells-group/metro-sampler/internal/model"
)

type cityState struct {
	city  string
	state string
}

// Index is the read-only lookup structure built once per run from the
// region universe.
type Index struct {
	exact       map[cityState]string
	unambiguous map[string]string
	ambiguous   map[string]bool
	names       map[string]string
}

// IndexStats summarizes an Index.
type IndexStats struct {
	Regions         int `json:"regions"`
	CityStateKeys   int `json:"city_state_keys"`
	UnambiguousKeys int `json:"unambiguous_keys"`
	AmbiguousKeys   int `json:"ambiguous_keys"`
}

// BuildIndex indexes every (city, state) token pair of each region name.
// Regions are visited in id order so that the first writer of a colliding
// (city, state) key is deterministic. A city token seen under two or more
// region ids is ambiguous and never resolves by city alone.
func BuildIndex(regions []model.Region) *Index {
	sorted := make([]model.Region, 0, len(regions))
	for _, r := range regions {
		if r.ID != "" {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &Index{
		exact:       make(map[cityState]string),
		unambiguous: make(map[string]string),
		ambiguous:   make(map[string]bool),
		names:       make(map[string]string),
	}

	for _, r := range sorted {
		if key := NormalizeName(r.Name); key != "" {
			if _, ok := idx.names[key]; !ok {
				idx.names[key] = r.ID
			}
		}

		cities, states := ParseRegionName(r.Name)
		for _, city := range cities {
			for _, state := range states {
				k := cityState{city: city, state: state}
				if _, ok := idx.exact[k]; !ok {
					idx.exact[k] = r.ID
				}
			}

			if idx.ambiguous[city] {
				continue
			}
			if prev, ok := idx.unambiguous[city]; ok && prev != r.ID {
				delete(idx.unambiguous, city)
				idx.ambiguous[city] = true
				continue
			}
			idx.unambiguous[city] = r.ID
		}
	}

	return idx
}

// Exact returns the region id for a normalized (city, state) pair.
func (idx *Index) Exact(city, state string) (string, bool) {
	id, ok := idx.exact[cityState{city: normalizeCity(city), state: normalizeState(state)}]
	return id, ok
}

// City returns the region id for an unambiguous city token.
func (idx *Index) City(city string) (string, bool) {
	id, ok := idx.unambiguous[normalizeCity(city)]
	return id, ok
}

// Name returns the region id whose full canonical name matches.
func (idx *Index) Name(name string) (string, bool) {
	id, ok := idx.names[NormalizeName(name)]
	return id, ok
}

// IsAmbiguous reports whether a city token maps to more than one region.
func (idx *Index) IsAmbiguous(city string) bool {
	return idx.ambiguous[normalizeCity(city)]
}

// CityTokens returns every indexed city token in sorted order.
func (idx *Index) CityTokens() []string {
	seen := make(map[string]bool)
	for k := range idx.exact {
		seen[k.city] = true
	}
	for c := range idx.unambiguous {
		seen[c] = true
	}
	for c := range idx.ambiguous {
		seen[c] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats reports index sizes.
func (idx *Index) Stats() IndexStats {
	return IndexStats{
		Regions:         len(idx.names),
		CityStateKeys:   len(idx.exact),
		UnambiguousKeys: len(idx.unambiguous),
		AmbiguousKeys:   len(idx.ambiguous),
	}
}
