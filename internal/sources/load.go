package sources

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/resolve"
)

// Source names used in Bundle.Origins and resolution metrics.
const (
	SourceCensus = "census"
	SourceNTD    = "ntd"
	SourceGBFS   = "gbfs"
)

// Options configures LoadAll.
type Options struct {
	Census         CensusOptions
	NTDDir         string
	GBFSCatalogURL string
	Offline        bool
	// ResolverOptions are passed to the resolver built over the universe.
	ResolverOptions []resolve.Option
}

// Bundle holds everything the sampling pipeline needs from the sources.
type Bundle struct {
	Regions  []model.Region
	Agencies []model.Agency
	Systems  []model.MobilitySystem
	Resolver *resolve.Resolver
	Origins  map[string]Origin
}

// LoadAll loads the region universe, builds the resolver over it, then
// loads agencies and shared-mobility systems concurrently. Source failures
// fall back to built-in data; only context cancellation is returned as an
// error.
func LoadAll(ctx context.Context, f fetcher.Fetcher, opts Options) (*Bundle, error) {
	opts.Census.Offline = opts.Census.Offline || opts.Offline
	regions, censusOrigin := NewCensus(f, opts.Census).FetchRegions(ctx)
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "sources: load regions")
	}

	idx := resolve.BuildIndex(regions)
	stats := idx.Stats()
	zap.L().Info("built region index",
		zap.Int("regions", stats.Regions),
		zap.Int("city_state_keys", stats.CityStateKeys),
		zap.Int("unambiguous_keys", stats.UnambiguousKeys),
		zap.Int("ambiguous_keys", stats.AmbiguousKeys),
	)

	b := &Bundle{
		Regions:  regions,
		Resolver: resolve.NewResolver(idx, opts.ResolverOptions...),
		Origins:  map[string]Origin{SourceCensus: censusOrigin},
	}

	var ntdOrigin, gbfsOrigin Origin
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Agencies, ntdOrigin = NewNTD(opts.NTDDir).LoadAgencies(gctx, b.Resolver)
		return gctx.Err()
	})
	g.Go(func() error {
		b.Systems, gbfsOrigin = NewGBFS(f, opts.GBFSCatalogURL, opts.Offline).LoadSystems(gctx, b.Resolver)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "sources: load agencies and systems")
	}

	b.Origins[SourceNTD] = ntdOrigin
	b.Origins[SourceGBFS] = gbfsOrigin
	return b, nil
}
