package sampler

import (
	"github.com/rotisserie/eris"
)

// ErrInvalidConfig marks fatal configuration or input problems. Soft
// failures (non-convergence, coverage shortfall) never use it.
var ErrInvalidConfig = eris.New("sampler: invalid configuration")

// Config holds the sample sizing and reproducibility parameters.
type Config struct {
	TargetSize             int     `yaml:"target_size" mapstructure:"target_size" json:"target_size"`
	MinSize                int     `yaml:"min_size" mapstructure:"min_size" json:"min_size"`
	MaxSize                int     `yaml:"max_size" mapstructure:"max_size" json:"max_size"`
	MandatoryTopN          int     `yaml:"mandatory_top_n" mapstructure:"mandatory_top_n" json:"mandatory_top_n"`
	MinCoverageFraction    float64 `yaml:"min_coverage_fraction" mapstructure:"min_coverage_fraction" json:"min_coverage_fraction"`
	Seed                   uint64  `yaml:"seed" mapstructure:"seed" json:"seed"`
	MaxRebalanceIterations int     `yaml:"max_rebalance_iterations" mapstructure:"max_rebalance_iterations" json:"max_rebalance_iterations"`
}

// DefaultConfig returns the production sampling parameters.
func DefaultConfig() Config {
	return Config{
		TargetSize:             50,
		MinSize:                45,
		MaxSize:                52,
		MandatoryTopN:          10,
		MinCoverageFraction:    0.5,
		Seed:                   42,
		MaxRebalanceIterations: 100,
	}
}

// WithTarget returns a copy with the target size overridden, widening the
// min/max bounds when they would no longer bracket it.
func (c Config) WithTarget(target int) Config {
	c.TargetSize = target
	if c.MaxSize < target {
		c.MaxSize = target
	}
	if c.MinSize > target {
		c.MinSize = target
	}
	return c
}

// Validate enforces the configuration invariants the allocator relies on.
func (c Config) Validate() error {
	switch {
	case c.TargetSize <= 0:
		return eris.Wrapf(ErrInvalidConfig, "target_size must be positive, got %d", c.TargetSize)
	case c.MandatoryTopN < 0:
		return eris.Wrapf(ErrInvalidConfig, "mandatory_top_n must not be negative, got %d", c.MandatoryTopN)
	case c.MandatoryTopN > c.TargetSize:
		return eris.Wrapf(ErrInvalidConfig, "mandatory_top_n (%d) exceeds target_size (%d)", c.MandatoryTopN, c.TargetSize)
	case c.MinSize < 0 || c.MinSize > c.TargetSize:
		return eris.Wrapf(ErrInvalidConfig, "min_size (%d) must be within [0, target_size=%d]", c.MinSize, c.TargetSize)
	case c.MaxSize < c.TargetSize:
		return eris.Wrapf(ErrInvalidConfig, "max_size (%d) is below target_size (%d)", c.MaxSize, c.TargetSize)
	case c.MinCoverageFraction < 0 || c.MinCoverageFraction > 1:
		return eris.Wrapf(ErrInvalidConfig, "min_coverage_fraction must be within [0, 1], got %g", c.MinCoverageFraction)
	case c.MaxRebalanceIterations <= 0:
		return eris.Wrapf(ErrInvalidConfig, "max_rebalance_iterations must be positive, got %d", c.MaxRebalanceIterations)
	}
	return nil
}
