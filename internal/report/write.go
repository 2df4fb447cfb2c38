package report

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/geo"
	"github.com/sells-group/metro-sampler/internal/model"
)

// Output file names inside the output directory.
const (
	CSVFile     = "msa_sample.csv"
	XLSXFile    = "msa_sample.xlsx"
	ReportFile  = "sample_report.txt"
	GeoJSONFile = "sample_map.geojson"
)

// Options selects which outputs WriteAll produces.
type Options struct {
	CSV     bool
	XLSX    bool
	Report  bool
	GeoJSON bool
}

// Paths lists the files written. Empty entries were not requested.
type Paths struct {
	CSV     string `json:"csv,omitempty"`
	XLSX    string `json:"xlsx,omitempty"`
	Report  string `json:"report,omitempty"`
	GeoJSON string `json:"geojson,omitempty"`
}

// WriteAll writes the requested outputs into dir, creating it if needed.
func WriteAll(dir string, opts Options, s *model.Sample, universe []model.Region, centroids geo.Centroids) (Paths, error) {
	var paths Paths
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paths, eris.Wrap(err, "report: create output dir")
	}
	log := zap.L().With(zap.String("component", "report"))

	if opts.CSV {
		p := filepath.Join(dir, CSVFile)
		if err := writeFile(p, func(w io.Writer) error { return WriteCSV(w, s) }); err != nil {
			return paths, err
		}
		paths.CSV = p
		log.Info("wrote sample csv", zap.String("path", p))
	}

	if opts.XLSX {
		p := filepath.Join(dir, XLSXFile)
		if err := WriteXLSX(p, s); err != nil {
			return paths, err
		}
		paths.XLSX = p
		log.Info("wrote sample workbook", zap.String("path", p))
	}

	if opts.Report {
		p := filepath.Join(dir, ReportFile)
		if err := os.WriteFile(p, []byte(Summary(s, universe)), 0o644); err != nil {
			return paths, eris.Wrap(err, "report: write summary")
		}
		paths.Report = p
		log.Info("wrote summary report", zap.String("path", p))
	}

	if opts.GeoJSON {
		p := filepath.Join(dir, GeoJSONFile)
		var n int
		err := writeFile(p, func(w io.Writer) error {
			var err error
			n, err = WriteGeoJSON(w, s, centroids)
			return err
		})
		if err != nil {
			return paths, err
		}
		paths.GeoJSON = p
		if missing := s.Len() - n; missing > 0 {
			log.Warn("sample regions without centroid left off the map", zap.Int("missing", missing))
		}
		log.Info("wrote sample map", zap.String("path", p), zap.Int("features", n))
	}

	return paths, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close %s", path)
	}
	return nil
}
