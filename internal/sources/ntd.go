package sources

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/resolve"
)

// ntdFilePatterns are matched case-insensitively against file names in the
// NTD directory, in order.
var ntdFilePatterns = []string{"agency_information", "agency", "2023_agency"}

// NTD loads transit agencies from a National Transit Database agency file.
type NTD struct {
	dir  string
	rail map[string]bool
}

// NewNTD creates an NTD loader reading from dir.
func NewNTD(dir string) *NTD {
	return &NTD{dir: dir, rail: RailRegions()}
}

// FindFile returns the first CSV or XLSX agency file in the directory.
func (n *NTD) FindFile() (string, bool) {
	if n.dir == "" {
		return "", false
	}
	entries, err := os.ReadDir(n.dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, pat := range ntdFilePatterns {
		for _, name := range names {
			ext := strings.ToLower(filepath.Ext(name))
			if ext != ".csv" && ext != ".xlsx" {
				continue
			}
			if strings.Contains(strings.ToLower(name), pat) {
				return filepath.Join(n.dir, name), true
			}
		}
	}
	return "", false
}

// LoadAgencies parses the agency file and resolves each agency's urbanized
// area to a region. A missing or unreadable file falls back to
// BuiltinAgencies.
func (n *NTD) LoadAgencies(ctx context.Context, r *resolve.Resolver) ([]model.Agency, Origin) {
	log := zap.L().With(zap.String("source", "ntd"))

	path, ok := n.FindFile()
	if !ok {
		log.Warn("ntd files not found, using built-in agency list", zap.String("dir", n.dir))
		return BuiltinAgencies(), OriginBuiltin
	}

	rows, err := readTable(ctx, path)
	if err != nil {
		log.Warn("ntd file unreadable, using built-in agency list", zap.String("path", path), zap.Error(err))
		return BuiltinAgencies(), OriginBuiltin
	}

	agencies, err := ParseAgencies(fetcher.Records(rows, NormalizeHeader), r, n.rail)
	if err != nil {
		log.Warn("ntd file rejected, using built-in agency list", zap.String("path", path), zap.Error(err))
		return BuiltinAgencies(), OriginBuiltin
	}

	var matched int
	for _, a := range agencies {
		if a.RegionID != "" {
			matched++
		}
	}
	log.Info("parsed ntd agencies",
		zap.String("path", path),
		zap.Int("agencies", len(agencies)),
		zap.Int("matched", matched),
	)
	return agencies, OriginFile
}

// ParseAgencies converts normalized NTD records into agencies. Records
// without an agency name are skipped. rail lists the region ids whose
// agencies are flagged as rail.
func ParseAgencies(records []map[string]string, r *resolve.Resolver, rail map[string]bool) ([]model.Agency, error) {
	if len(records) > 0 {
		if _, ok := records[0]["agency_name"]; !ok {
			return nil, eris.New("ntd: missing agency_name column")
		}
	}

	out := make([]model.Agency, 0, len(records))
	for _, rec := range records {
		name := strings.TrimSpace(rec["agency_name"])
		if name == "" {
			continue
		}
		a := model.Agency{
			NTDID:   strings.TrimSpace(rec["ntd_id"]),
			Name:    name,
			UZAName: strings.TrimSpace(rec["uza_name"]),
			City:    strings.TrimSpace(rec["city"]),
			State:   strings.TrimSpace(rec["state"]),
		}
		if r != nil {
			a.RegionID = r.ResolveUZA(a.UZAName)
		}
		a.HasRail = a.RegionID != "" && rail[a.RegionID]
		out = append(out, a)
	}
	return out, nil
}

// NormalizeHeader lower-cases a column name and replaces spaces with
// underscores.
func NormalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

func readTable(ctx context.Context, path string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{HeaderCell: "Agency Name"})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ntd: open file")
	}
	defer f.Close() //nolint:errcheck
	return fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
}
