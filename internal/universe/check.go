package universe

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/model"
)

// ErrDuplicateRegion is returned by Check when two regions share an id.
var ErrDuplicateRegion = eris.New("universe: duplicate region id")

// Report summarizes data-quality findings for a merged universe.
type Report struct {
	Regions            int      `json:"regions"`
	TotalPopulation    int64    `json:"total_population"`
	MissingPopulation  []string `json:"missing_population,omitempty"`
	WithoutAgencies    int      `json:"without_agencies"`
	WithSharedMobility int      `json:"with_shared_mobility"`
	WithRail           int      `json:"with_rail"`
	Warnings           []string `json:"warnings,omitempty"`
}

// OK reports whether the universe passed every check.
func (r Report) OK() bool { return len(r.Warnings) == 0 }

// Check runs data-quality checks over a merged universe. Duplicate region
// ids are fatal; everything else is reported as a warning.
func Check(regions []model.Region) (Report, error) {
	rep := Report{Regions: len(regions)}
	counts := make(map[string]int, len(regions))
	for _, r := range regions {
		counts[r.ID]++
		rep.TotalPopulation += r.Population
		if r.Population <= 0 {
			rep.MissingPopulation = append(rep.MissingPopulation, r.ID)
		}
		if r.NAgencies == 0 {
			rep.WithoutAgencies++
		}
		if r.HasRail {
			rep.WithRail++
		}
		if r.HasSharedMobility {
			rep.WithSharedMobility++
		}
	}

	var dupes []string
	for id, n := range counts {
		if n > 1 {
			dupes = append(dupes, id)
		}
	}
	if len(dupes) > 0 {
		sort.Strings(dupes)
		return rep, eris.Wrapf(ErrDuplicateRegion, "%d duplicate ids: %v", len(dupes), dupes)
	}

	if len(rep.MissingPopulation) > 0 {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("%d regions have missing population", len(rep.MissingPopulation)))
	}
	if rep.Regions > 0 && rep.WithoutAgencies*2 > rep.Regions {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("more than 50%% of regions have no matched transit agencies (%d of %d)", rep.WithoutAgencies, rep.Regions))
	}

	log := zap.L().With(zap.String("component", "universe"))
	for _, w := range rep.Warnings {
		log.Warn("data quality", zap.String("issue", w))
	}
	if rep.OK() {
		log.Info("data quality checks passed", zap.Int("regions", rep.Regions))
	}
	return rep, nil
}
