package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/metro-sampler/internal/model"
)

// Sheet names in the workbook export.
const (
	SampleSheet     = "sample"
	AllocationSheet = "allocation"
)

// WriteXLSX saves a workbook with the sample records and the per-stratum
// allocation.
func WriteXLSX(path string, s *model.Sample) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SampleSheet)
	if err != nil {
		return eris.Wrap(err, "report: add sample sheet")
	}
	addStringRow(sheet, Columns)
	for _, r := range Rows(s) {
		row := sheet.AddRow()
		row.AddCell().SetString(r.CBSACode)
		row.AddCell().SetString(r.MSAName)
		row.AddCell().SetInt64(r.Population)
		row.AddCell().SetString(r.StateAbbr)
		row.AddCell().SetString(r.CensusRegion)
		row.AddCell().SetString(r.PopStratum)
		row.AddCell().SetString(r.RailStratum)
		row.AddCell().SetString(r.SMStratum)
		row.AddCell().SetString(r.Stratum)
		row.AddCell().SetBool(r.HasRail)
		row.AddCell().SetBool(r.HasSharedMobility)
		row.AddCell().SetInt(r.NAgencies)
		row.AddCell().SetString(r.AgencyList)
		row.AddCell().SetInt(r.NSharedMobility)
		row.AddCell().SetString(r.SharedMobilityList)
		row.AddCell().SetString(r.SelectionMethod)
		row.AddCell().SetFloat(r.SampleWeight)
	}

	alloc, err := f.AddSheet(AllocationSheet)
	if err != nil {
		return eris.Wrap(err, "report: add allocation sheet")
	}
	addStringRow(alloc, []string{"stratum", "allocated", "sampled"})
	sampled := sampledByStratum(s)
	for _, st := range strataOf(s) {
		addStringRow(alloc, []string{
			st.String(),
			strconv.Itoa(s.Allocation[st]),
			strconv.Itoa(sampled[st]),
		})
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save xlsx")
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func sampledByStratum(s *model.Sample) map[model.Stratum]int {
	out := make(map[model.Stratum]int)
	for _, r := range s.Records {
		out[r.Stratum]++
	}
	return out
}

// strataOf returns every stratum that was allocated or sampled, in key order.
func strataOf(s *model.Sample) []model.Stratum {
	keys := s.AllocatedStrata()
	seen := make(map[model.Stratum]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	var extra []model.Stratum
	for _, r := range s.Records {
		if !seen[r.Stratum] {
			seen[r.Stratum] = true
			extra = append(extra, r.Stratum)
		}
	}
	if len(extra) == 0 {
		return keys
	}
	all := append(keys, extra...)
	sortStrata(all)
	return all
}
