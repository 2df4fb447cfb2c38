package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/metro-sampler/internal/model"
)

const rule = "================================================================="

// Summary renders the plain-text sample report: totals, coverage,
// breakdowns by selection method and stratum dimension, a weight summary
// and the list of selected regions.
func Summary(s *model.Sample, universe []model.Region) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	line := func(format string, args ...any) {
		b.WriteString(p.Sprintf(format, args...))
		b.WriteByte('\n')
	}

	line(rule)
	line("  MSA SAMPLE - SUMMARY REPORT")
	line(rule)
	line("Universe MSAs:        %d", s.UniverseSize)
	line("Sample size:          %d", s.Len())
	line("Population coverage:  %d / %d (%.1f%%)", s.SamplePopulation, s.UniversePopulation, s.Coverage*100)
	line("Coverage target:      %.1f%% (%s)", s.CoverageTarget*100, metLabel(s.CoverageMet))
	if s.Converged {
		line("Rebalancing:          converged in %d iterations", s.RebalanceIterations)
	} else {
		line("Rebalancing:          NOT converged after %d iterations", s.RebalanceIterations)
	}
	line("Seed:                 %d", s.Seed)
	if s.BelowMinSize {
		line("WARNING: sample is below the configured minimum size")
	}

	section := func(title string, counts map[string]int, total map[string]int) {
		line("")
		line("-- %s --", title)
		for _, k := range countOrder(counts) {
			if total != nil {
				line("  %-22s %4d / %d", k, counts[k], total[k])
				continue
			}
			line("  %-22s %4d", k, counts[k])
		}
	}

	methods := make(map[string]int)
	for m, n := range s.CountByMethod() {
		methods[string(m)] = n
	}
	section("Selection method breakdown", methods, nil)
	section("Population stratum", tally(s, func(r model.Region) string { return r.Stratum.Population }),
		tallyRegions(universe, func(r model.Region) string { return r.Stratum.Population }))
	section("Census region", tally(s, func(r model.Region) string { return r.CensusRegion }), nil)
	section("Rail presence", tally(s, func(r model.Region) string { return strconv.FormatBool(r.HasRail) }), nil)
	section("Shared mobility presence", tally(s, func(r model.Region) string { return strconv.FormatBool(r.HasSharedMobility) }), nil)

	line("")
	line("-- Sample weight summary --")
	ws := weightStats(s)
	line("  count %6d", ws.count)
	line("  mean  %9.3f", ws.mean)
	line("  min   %9.3f", ws.min)
	line("  max   %9.3f", ws.max)

	line("")
	line("-- Selected MSAs --")
	for _, r := range s.Records {
		line("  %s  %-55s pop=%12d  method=%s", r.ID, r.Name, r.Population, r.SelectionMethod)
	}
	line(rule)
	return b.String()
}

func metLabel(met bool) string {
	if met {
		return "met"
	}
	return "shortfall"
}

func tally(s *model.Sample, key func(model.Region) string) map[string]int {
	out := make(map[string]int)
	for _, r := range s.Records {
		out[key(r.Region)]++
	}
	return out
}

func tallyRegions(regions []model.Region, key func(model.Region) string) map[string]int {
	out := make(map[string]int)
	for _, r := range regions {
		out[key(r)]++
	}
	return out
}

// countOrder sorts keys by count descending, then by key.
func countOrder(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

type weightSummary struct {
	count          int
	mean, min, max float64
}

func weightStats(s *model.Sample) weightSummary {
	var ws weightSummary
	var sum float64
	for i, r := range s.Records {
		w := r.SampleWeight
		if i == 0 || w < ws.min {
			ws.min = w
		}
		if i == 0 || w > ws.max {
			ws.max = w
		}
		sum += w
		ws.count++
	}
	if ws.count > 0 {
		ws.mean = sum / float64(ws.count)
	}
	return ws
}

func sortStrata(keys []model.Stratum) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// FormatCoverage renders a coverage fraction as a percentage.
func FormatCoverage(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}
