package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/metrics"
	"github.com/sells-group/metro-sampler/internal/pipeline"
	"github.com/sells-group/metro-sampler/internal/store"
)

// sampleEnv holds the store, metrics and pipeline shared by the sample,
// universe, resolve and serve commands.
type sampleEnv struct {
	Store    store.Store // may be nil
	Metrics  *metrics.Metrics
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *sampleEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the configuration, opens the run archive and builds the
// pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context) (*sampleEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	table, err := cfg.StrataTable()
	if err != nil {
		return nil, err
	}
	resolverOpts, err := cfg.ResolverOptions()
	if err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	p := pipeline.New(fetcher.NewHTTPFetcher(cfg.HTTPOptions()), st, m, pipeline.Options{
		Sources:         cfg.SourceOptions(resolverOpts),
		Table:           table,
		Sampling:        cfg.Sampling,
		OutputDir:       cfg.Output.Dir,
		Outputs:         cfg.ReportOptions(),
		CBSAShapefile:   cfg.Sources.CBSAShapefile,
		MetricsTextfile: cfg.Metrics.Textfile,
	})

	return &sampleEnv{Store: st, Metrics: m, Pipeline: p}, nil
}

// initStore opens the configured run archive. It returns a nil store when
// archiving is disabled.
func initStore(ctx context.Context) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}
