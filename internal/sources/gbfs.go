package sources

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/resolve"
)

// DefaultGBFSCatalogURL is the MobilityData systems catalog.
const DefaultGBFSCatalogURL = "https://github.com/MobilityData/gbfs/raw/master/systems.csv"

// GBFS loads shared-mobility systems from the GBFS systems catalog.
type GBFS struct {
	fetcher    fetcher.Fetcher
	catalogURL string
	offline    bool
}

// NewGBFS creates a GBFS loader.
func NewGBFS(f fetcher.Fetcher, catalogURL string, offline bool) *GBFS {
	if catalogURL == "" {
		catalogURL = DefaultGBFSCatalogURL
	}
	return &GBFS{fetcher: f, catalogURL: catalogURL, offline: offline}
}

// LoadSystems downloads the catalog and resolves each US system to a
// region by location fragment. Unresolved systems are returned with an
// empty region id. Any failure falls back to BuiltinSystems.
func (g *GBFS) LoadSystems(ctx context.Context, r *resolve.Resolver) ([]model.MobilitySystem, Origin) {
	log := zap.L().With(zap.String("source", "gbfs"))
	if g.offline || g.fetcher == nil {
		log.Info("offline: using built-in shared-mobility list")
		return BuiltinSystems(), OriginBuiltin
	}

	systems, err := g.fetch(ctx, r)
	if err != nil {
		log.Warn("gbfs catalog unavailable, using built-in shared-mobility list", zap.Error(err))
		return BuiltinSystems(), OriginBuiltin
	}
	log.Info("fetched gbfs catalog", zap.Int("systems", len(systems)))
	return systems, OriginRemote
}

func (g *GBFS) fetch(ctx context.Context, r *resolve.Resolver) ([]model.MobilitySystem, error) {
	body, err := g.fetcher.Download(ctx, g.catalogURL)
	if err != nil {
		return nil, eris.Wrap(err, "gbfs: download catalog")
	}
	defer body.Close() //nolint:errcheck

	rows, err := fetcher.ReadCSV(ctx, body, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "gbfs: read catalog")
	}
	return ParseSystems(fetcher.Records(rows, NormalizeHeader), r)
}

// ParseSystems keeps US systems from normalized catalog records and
// resolves "location name" with the fragment resolver.
func ParseSystems(records []map[string]string, r *resolve.Resolver) ([]model.MobilitySystem, error) {
	if len(records) == 0 {
		return nil, eris.New("gbfs: empty catalog")
	}
	_, hasCountry := records[0]["country_code"]

	var out []model.MobilitySystem
	for _, rec := range records {
		location := strings.TrimSpace(rec["location"])
		if hasCountry {
			if !strings.EqualFold(strings.TrimSpace(rec["country_code"]), "US") {
				continue
			}
		} else if !isUSLocation(location) {
			continue
		}

		s := model.MobilitySystem{
			SystemID: strings.TrimSpace(rec["system_id"]),
			Name:     strings.TrimSpace(rec["name"]),
			Location: location,
		}
		if r != nil {
			s.RegionID = r.ResolveFragment(location + " " + s.Name)
		}
		out = append(out, s)
	}
	return out, nil
}

func isUSLocation(location string) bool {
	l := strings.ToLower(location)
	return strings.HasSuffix(l, ", us") || strings.Contains(l, "united states")
}
