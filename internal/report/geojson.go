package report

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/metro-sampler/internal/geo"
	"github.com/sells-group/metro-sampler/internal/model"
)

// WriteGeoJSON writes the sample as a FeatureCollection of points. Records
// without a known centroid are skipped; the number written is returned.
func WriteGeoJSON(w io.Writer, s *model.Sample, centroids geo.Centroids) (int, error) {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, r := range s.Records {
		p, ok := centroids.Lookup(r.ID)
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Lon, p.Lat}),
			Properties: map[string]any{
				"name":             r.Name,
				"population":       r.Population,
				"selection_method": string(r.SelectionMethod),
				"sample_weight":    r.SampleWeight,
				"stratum":          r.Stratum.String(),
			},
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return 0, eris.Wrap(err, "report: encode geojson")
	}
	if _, err := w.Write(data); err != nil {
		return 0, eris.Wrap(err, "report: write geojson")
	}
	return len(fc.Features), nil
}
