// Package pipeline wires the sources, universe builder, strata assigner
// and sampler into one run, then writes outputs, archives the run and
// exports metrics.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/geo"
	"github.com/sells-group/metro-sampler/internal/metrics"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/report"
	"github.com/sells-group/metro-sampler/internal/resolve"
	"github.com/sells-group/metro-sampler/internal/sampler"
	"github.com/sells-group/metro-sampler/internal/sources"
	"github.com/sells-group/metro-sampler/internal/store"
	"github.com/sells-group/metro-sampler/internal/strata"
	"github.com/sells-group/metro-sampler/internal/universe"
)

// Stage names used in logs and the stage duration histogram.
const (
	StageSources  = "sources"
	StageUniverse = "universe"
	StageSelect   = "select"
	StageOutputs  = "outputs"
	StageArchive  = "archive"
)

// Options configures a Pipeline.
type Options struct {
	Sources         sources.Options
	Table           strata.Table
	Sampling        sampler.Config
	OutputDir       string
	Outputs         report.Options
	CBSAShapefile   string
	MetricsTextfile string
}

// Universe is the merged, checked and stratified region universe together
// with the resolver built over it.
type Universe struct {
	Regions            []model.Region
	Check              universe.Report
	Resolver           *resolve.Resolver
	Origins            map[string]sources.Origin
	UnresolvedAgencies int
	UnresolvedSystems  int
}

// Result is the outcome of a full run.
type Result struct {
	Universe *Universe
	Sample   *model.Sample
	Outputs  report.Paths
	RunID    string
}

// Pipeline runs the sampling workflow. Store and metrics are optional.
type Pipeline struct {
	fetcher fetcher.Fetcher
	store   store.Store
	metrics *metrics.Metrics
	opts    Options
}

// New creates a Pipeline.
func New(f fetcher.Fetcher, st store.Store, m *metrics.Metrics, opts Options) *Pipeline {
	if len(opts.Table.Buckets) == 0 {
		opts.Table = strata.DefaultTable()
	}
	return &Pipeline{fetcher: f, store: st, metrics: m, opts: opts}
}

// Options returns the pipeline options.
func (p *Pipeline) Options() Options { return p.opts }

func (p *Pipeline) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	p.metrics.ObserveStage(name, d)
	zap.L().Debug("pipeline: stage complete",
		zap.String("stage", name),
		zap.Duration("duration", d),
		zap.Bool("ok", err == nil),
	)
	return err
}

// BuildUniverse loads the sources, aggregates agencies and shared-mobility
// systems per region, merges them onto the region list, runs the quality
// checks and assigns strata.
func (p *Pipeline) BuildUniverse(ctx context.Context) (*Universe, error) {
	var bundle *sources.Bundle
	err := p.stage(StageSources, func() error {
		var err error
		bundle, err = sources.LoadAll(ctx, p.fetcher, p.opts.Sources)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load sources")
	}

	u := &Universe{Resolver: bundle.Resolver, Origins: bundle.Origins}
	err = p.stage(StageUniverse, func() error {
		transit, unresolvedAgencies := universe.AggregateAgencies(bundle.Agencies)
		mobility, unresolvedSystems := universe.AggregateMobility(bundle.Systems)
		u.UnresolvedAgencies = unresolvedAgencies
		u.UnresolvedSystems = unresolvedSystems
		p.observeResolution(sources.SourceNTD, len(bundle.Agencies), unresolvedAgencies)
		p.observeResolution(sources.SourceGBFS, len(bundle.Systems), unresolvedSystems)

		merged := universe.Merge(bundle.Regions, transit, mobility)
		rep, err := universe.Check(merged)
		if err != nil {
			return err
		}
		u.Check = rep
		u.Regions = strata.NewAssigner(p.opts.Table).AssignAll(merged)
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build universe")
	}

	zap.L().Info("pipeline: universe ready",
		zap.Int("regions", len(u.Regions)),
		zap.Int64("population", u.Check.TotalPopulation),
		zap.Int("with_rail", u.Check.WithRail),
		zap.Int("with_shared_mobility", u.Check.WithSharedMobility),
		zap.Any("origins", u.Origins),
	)
	return u, nil
}

func (p *Pipeline) observeResolution(source string, total, unresolved int) {
	resolved := total - unresolved
	p.metrics.ObserveResolution(source, resolved, unresolved)
	log := zap.L().With(zap.String("source", source))
	if unresolved > 0 {
		log.Warn("pipeline: records without a region",
			zap.Int("resolved", resolved),
			zap.Int("unresolved", unresolved),
		)
		return
	}
	log.Info("pipeline: all records resolved", zap.Int("resolved", resolved))
}

// Select draws a sample from u with cfg and records the sample metrics.
func (p *Pipeline) Select(u *Universe, cfg sampler.Config) (*model.Sample, error) {
	var sample *model.Sample
	err := p.stage(StageSelect, func() error {
		s, err := sampler.New(cfg)
		if err != nil {
			return err
		}
		sample, err = s.Select(u.Regions)
		return err
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select")
	}
	p.metrics.ObserveSample(sample)
	return sample, nil
}

// Centroids returns the built-in centroids, overlaid with the configured
// CBSA shapefile when one loads. An http(s) shapefile location is
// downloaded first unless sources are offline.
func (p *Pipeline) Centroids(ctx context.Context) geo.Centroids {
	c := geo.BuiltinCentroids()
	path := p.opts.CBSAShapefile
	if path == "" {
		return c
	}
	log := zap.L().With(zap.String("path", path))

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if p.opts.Sources.Offline || p.fetcher == nil {
			log.Info("pipeline: offline, using built-in centroids")
			return c
		}
		dir, err := os.MkdirTemp("", "cbsa-*")
		if err != nil {
			log.Warn("pipeline: create temp dir for CBSA shapefile", zap.Error(err))
			return c
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		local := filepath.Join(dir, "cbsa.zip")
		if _, err := p.fetcher.DownloadToFile(ctx, path, local); err != nil {
			log.Warn("pipeline: CBSA shapefile download failed, using built-in centroids", zap.Error(err))
			return c
		}
		path = local
	}

	loaded, err := geo.LoadCBSACentroids(path)
	if err != nil {
		log.Warn("pipeline: CBSA shapefile unavailable, using built-in centroids", zap.Error(err))
		return c
	}
	return c.Merge(loaded)
}

// Archive stores the run and the universe snapshot. It is a no-op without
// a store.
func (p *Pipeline) Archive(ctx context.Context, u *Universe, s *model.Sample, targetSize int) (string, error) {
	id, err := p.ArchiveRun(ctx, s, targetSize)
	if err != nil {
		return "", err
	}
	if err := p.SnapshotUniverse(ctx, u); err != nil {
		return "", err
	}
	return id, nil
}

// ArchiveRun stores the run and its records without touching the universe
// snapshot. It is a no-op without a store.
func (p *Pipeline) ArchiveRun(ctx context.Context, s *model.Sample, targetSize int) (string, error) {
	if p.store == nil {
		return "", nil
	}
	run := store.NewRun(s, targetSize)
	err := p.stage(StageArchive, func() error {
		return p.store.SaveRun(ctx, run)
	})
	if err != nil {
		return "", eris.Wrap(err, "pipeline: archive run")
	}
	return run.ID, nil
}

// SnapshotUniverse upserts the universe's regions into the store.
func (p *Pipeline) SnapshotUniverse(ctx context.Context, u *Universe) error {
	if p.store == nil {
		return nil
	}
	err := p.stage(StageArchive, func() error {
		_, err := p.store.SaveUniverse(ctx, u.Regions)
		return err
	})
	if err != nil {
		return eris.Wrap(err, "pipeline: snapshot universe")
	}
	return nil
}

// Run executes the whole workflow with the configured sampling settings.
// Output, archive and metrics-export failures are logged, not returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.Uint64("seed", p.opts.Sampling.Seed))
	log.Info("pipeline: starting run")

	u, err := p.BuildUniverse(ctx)
	if err != nil {
		return nil, err
	}

	sample, err := p.Select(u, p.opts.Sampling)
	if err != nil {
		return nil, err
	}
	res := &Result{Universe: u, Sample: sample}

	err = p.stage(StageOutputs, func() error {
		var err error
		res.Outputs, err = report.WriteAll(p.opts.OutputDir, p.opts.Outputs, sample, u.Regions, p.Centroids(ctx))
		return err
	})
	if err != nil {
		log.Warn("pipeline: failed to write outputs", zap.Error(err))
	}

	res.RunID, err = p.Archive(ctx, u, sample, p.opts.Sampling.TargetSize)
	if err != nil {
		log.Warn("pipeline: failed to archive run", zap.Error(err))
	}

	if err := p.metrics.WriteTextfile(p.opts.MetricsTextfile); err != nil {
		log.Warn("pipeline: failed to write metrics textfile", zap.Error(err))
	}

	log.Info("pipeline: run complete",
		zap.Int("sample_size", sample.Len()),
		zap.Float64("coverage", sample.Coverage),
		zap.Bool("converged", sample.Converged),
		zap.String("run_id", res.RunID),
	)
	return res, nil
}
