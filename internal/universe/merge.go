package universe

import (
	"github.com/sells-group/metro-sampler/internal/model"
)

// Merge left-joins transit and mobility summaries onto base by region id.
// Regions without a summary keep zero counts, empty lists and false flags.
// base is not modified.
func Merge(base []model.Region, transit map[string]TransitSummary, mobility map[string]MobilitySummary) []model.Region {
	out := make([]model.Region, len(base))
	for i, r := range base {
		r.NAgencies, r.AgencyList, r.HasRail = 0, "", false
		r.NSharedMobility, r.SharedMobilityList, r.HasSharedMobility = 0, "", false

		if t, ok := transit[r.ID]; ok {
			r.NAgencies = t.NAgencies
			r.AgencyList = t.Agencies
			r.HasRail = t.HasRail
		}
		if m, ok := mobility[r.ID]; ok {
			r.NSharedMobility = m.NSystems
			r.SharedMobilityList = m.Systems
			r.HasSharedMobility = m.NSystems > 0
		}
		out[i] = r
	}
	return out
}
