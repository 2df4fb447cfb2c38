// Package report writes the sample to CSV, XLSX, a text summary and a
// GeoJSON dot map.
package report

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/metro-sampler/internal/model"
)

// Row is the flat export form of a sample record. Field order is the
// column order of the CSV and XLSX outputs.
type Row struct {
	CBSACode           string  `csv:"cbsa_code"`
	MSAName            string  `csv:"msa_name"`
	Population         int64   `csv:"population"`
	StateAbbr          string  `csv:"state_abbr"`
	CensusRegion       string  `csv:"census_region"`
	PopStratum         string  `csv:"pop_stratum"`
	RailStratum        string  `csv:"rail_stratum"`
	SMStratum          string  `csv:"sm_stratum"`
	Stratum            string  `csv:"stratum"`
	HasRail            bool    `csv:"has_rail"`
	HasSharedMobility  bool    `csv:"has_shared_mobility"`
	NAgencies          int     `csv:"n_agencies"`
	AgencyList         string  `csv:"agency_list"`
	NSharedMobility    int     `csv:"n_shared_mobility"`
	SharedMobilityList string  `csv:"shared_mobility_list"`
	SelectionMethod    string  `csv:"selection_method"`
	SampleWeight       float64 `csv:"sample_weight"`
}

// Columns is the export header.
var Columns = []string{
	"cbsa_code", "msa_name", "population", "state_abbr", "census_region",
	"pop_stratum", "rail_stratum", "sm_stratum", "stratum",
	"has_rail", "has_shared_mobility",
	"n_agencies", "agency_list",
	"n_shared_mobility", "shared_mobility_list",
	"selection_method", "sample_weight",
}

// Rows flattens the sample records in sample order.
func Rows(s *model.Sample) []Row {
	out := make([]Row, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, Row{
			CBSACode:           r.ID,
			MSAName:            r.Name,
			Population:         r.Population,
			StateAbbr:          r.State,
			CensusRegion:       r.CensusRegion,
			PopStratum:         r.Stratum.Population,
			RailStratum:        r.Stratum.Rail,
			SMStratum:          r.Stratum.Mobility,
			Stratum:            r.Stratum.String(),
			HasRail:            r.HasRail,
			HasSharedMobility:  r.HasSharedMobility,
			NAgencies:          r.NAgencies,
			AgencyList:         r.AgencyList,
			NSharedMobility:    r.NSharedMobility,
			SharedMobilityList: r.SharedMobilityList,
			SelectionMethod:    string(r.SelectionMethod),
			SampleWeight:       r.SampleWeight,
		})
	}
	return out
}

// WriteCSV writes the sample as CSV with a header row. An empty sample
// still produces the header.
func WriteCSV(w io.Writer, s *model.Sample) error {
	cw := csv.NewWriter(w)
	rows := Rows(s)

	if len(rows) == 0 {
		if err := cw.Write(Columns); err != nil {
			return eris.Wrap(err, "report: write csv header")
		}
	} else {
		enc := csvutil.NewEncoder(cw)
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "report: encode csv")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}
