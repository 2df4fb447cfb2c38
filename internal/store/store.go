// Package store archives completed sample runs. The sampler never reads
// the archive back to make decisions; it exists for audit and comparison.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/metro-sampler/internal/model"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = eris.New("store: run not found")

// Driver names accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Run is one archived sample selection.
type Run struct {
	ID                  string               `json:"id"`
	Seed                uint64               `json:"seed"`
	TargetSize          int                  `json:"target_size"`
	SampleSize          int                  `json:"sample_size"`
	UniverseSize        int                  `json:"universe_size"`
	Coverage            float64              `json:"coverage"`
	CoverageMet         bool                 `json:"coverage_met"`
	Converged           bool                 `json:"converged"`
	RebalanceIterations int                  `json:"rebalance_iterations"`
	CreatedAt           time.Time            `json:"created_at"`
	Records             []model.SampleRecord `json:"records,omitempty"`
}

// NewRun builds an archive entry for a sample with a fresh id.
func NewRun(s *model.Sample, targetSize int) *Run {
	return &Run{
		ID:                  uuid.New().String(),
		Seed:                s.Seed,
		TargetSize:          targetSize,
		SampleSize:          s.Len(),
		UniverseSize:        s.UniverseSize,
		Coverage:            s.Coverage,
		CoverageMet:         s.CoverageMet,
		Converged:           s.Converged,
		RebalanceIterations: s.RebalanceIterations,
		CreatedAt:           time.Now().UTC(),
		Records:             s.Records,
	}
}

// RunFilter pages through ListRuns, newest first.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return 100
	}
	return f.Limit
}

// Store persists runs and the latest region universe snapshot.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	SaveUniverse(ctx context.Context, regions []model.Region) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures the backend.
type Config struct {
	Driver      string      `mapstructure:"driver" yaml:"driver"`
	DatabaseURL string      `mapstructure:"database_url" yaml:"database_url"`
	Pool        *PoolConfig `mapstructure:"pool" yaml:"pool"`
}

// Open connects to the configured backend and migrates it. It returns
// nil, nil when the driver is "none" or empty.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "metro-sampler.db"
		}
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		st, err = NewPostgres(ctx, cfg.DatabaseURL, cfg.Pool)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
