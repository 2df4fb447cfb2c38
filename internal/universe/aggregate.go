// Package universe aggregates resolved transit and mobility records per
// region and merges them into the sampling universe.
package universe

import (
	"strings"

	"github.com/sells-group/metro-sampler/internal/model"
)

// ListSeparator joins names in agency and mobility display lists.
const ListSeparator = "; "

// TransitSummary holds per-region transit agency attributes.
type TransitSummary struct {
	RegionID  string `json:"region_id"`
	NAgencies int    `json:"n_agencies"`
	Agencies  string `json:"agency_list"`
	HasRail   bool   `json:"has_rail"`
}

// MobilitySummary holds per-region shared-mobility attributes.
type MobilitySummary struct {
	RegionID string `json:"region_id"`
	NSystems int    `json:"n_shared_mobility"`
	Systems  string `json:"shared_mobility_list"`
}

// nameList accumulates distinct names in first-seen order.
type nameList struct {
	seen  map[string]struct{}
	names []string
}

func (l *nameList) add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, ok := l.seen[name]; ok {
		return
	}
	l.seen[name] = struct{}{}
	l.names = append(l.names, name)
}

func (l *nameList) String() string {
	return strings.Join(l.names, ListSeparator)
}

// AggregateAgencies groups agencies by region id. Agencies without a
// region id are dropped and counted in the second return value.
func AggregateAgencies(agencies []model.Agency) (map[string]TransitSummary, int) {
	out := make(map[string]TransitSummary)
	lists := make(map[string]*nameList)
	var unresolved int

	for _, a := range agencies {
		if a.RegionID == "" {
			unresolved++
			continue
		}
		s := out[a.RegionID]
		s.RegionID = a.RegionID
		s.NAgencies++
		s.HasRail = s.HasRail || a.HasRail
		out[a.RegionID] = s

		l, ok := lists[a.RegionID]
		if !ok {
			l = &nameList{}
			lists[a.RegionID] = l
		}
		l.add(a.Name)
	}

	for id, l := range lists {
		s := out[id]
		s.Agencies = l.String()
		out[id] = s
	}
	return out, unresolved
}

// AggregateMobility groups shared-mobility systems by region id. Systems
// without a region id are dropped and counted in the second return value.
func AggregateMobility(systems []model.MobilitySystem) (map[string]MobilitySummary, int) {
	out := make(map[string]MobilitySummary)
	lists := make(map[string]*nameList)
	var unresolved int

	for _, sys := range systems {
		if sys.RegionID == "" {
			unresolved++
			continue
		}
		s := out[sys.RegionID]
		s.RegionID = sys.RegionID
		s.NSystems++
		out[sys.RegionID] = s

		l, ok := lists[sys.RegionID]
		if !ok {
			l = &nameList{}
			lists[sys.RegionID] = l
		}
		l.add(sys.Name)
	}

	for id, l := range lists {
		s := out[id]
		s.Systems = l.String()
		out[id] = s
	}
	return out, unresolved
}
