package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/report"
	"github.com/sells-group/metro-sampler/internal/resolve"
	"github.com/sells-group/metro-sampler/internal/sampler"
	"github.com/sells-group/metro-sampler/internal/sources"
	"github.com/sells-group/metro-sampler/internal/store"
	"github.com/sells-group/metro-sampler/internal/strata"
)

// Config holds the full application configuration.
type Config struct {
	Sampling sampler.Config `yaml:"sampling" mapstructure:"sampling"`
	Strata   StrataConfig   `yaml:"strata" mapstructure:"strata"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Store    store.Config   `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StrataConfig points at an optional YAML strata table.
type StrataConfig struct {
	TablePath string `yaml:"table_path" mapstructure:"table_path"`
}

// SourcesConfig configures where the universe, agencies and shared-mobility
// systems come from.
type SourcesConfig struct {
	CensusBaseURL   string `yaml:"census_base_url" mapstructure:"census_base_url"`
	CensusYear      int    `yaml:"census_year" mapstructure:"census_year"`
	CensusAPIKey    string `yaml:"census_api_key" mapstructure:"census_api_key"`
	NTDDir          string `yaml:"ntd_dir" mapstructure:"ntd_dir"`
	GBFSCatalogURL  string `yaml:"gbfs_catalog_url" mapstructure:"gbfs_catalog_url"`
	FragmentsPath   string `yaml:"fragments_path" mapstructure:"fragments_path"`
	Offline         bool   `yaml:"offline" mapstructure:"offline"`
	HTTPTimeoutSecs int    `yaml:"http_timeout_secs" mapstructure:"http_timeout_secs"`
	HTTPMaxRetries  int    `yaml:"http_max_retries" mapstructure:"http_max_retries"`
	CBSAShapefile   string `yaml:"cbsa_shapefile" mapstructure:"cbsa_shapefile"`
}

// OutputConfig selects the files written after a run.
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	CSV     bool   `yaml:"csv" mapstructure:"csv"`
	XLSX    bool   `yaml:"xlsx" mapstructure:"xlsx"`
	Report  bool   `yaml:"report" mapstructure:"report"`
	GeoJSON bool   `yaml:"geojson" mapstructure:"geojson"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAMPLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := sampler.DefaultConfig()
	v.SetDefault("sampling.target_size", def.TargetSize)
	v.SetDefault("sampling.min_size", def.MinSize)
	v.SetDefault("sampling.max_size", def.MaxSize)
	v.SetDefault("sampling.mandatory_top_n", def.MandatoryTopN)
	v.SetDefault("sampling.min_coverage_fraction", def.MinCoverageFraction)
	v.SetDefault("sampling.seed", def.Seed)
	v.SetDefault("sampling.max_rebalance_iterations", def.MaxRebalanceIterations)
	v.SetDefault("strata.table_path", "")
	v.SetDefault("sources.census_base_url", sources.DefaultCensusBaseURL)
	v.SetDefault("sources.census_year", 2023)
	v.SetDefault("sources.census_api_key", "")
	v.SetDefault("sources.ntd_dir", "data/ntd")
	v.SetDefault("sources.gbfs_catalog_url", sources.DefaultGBFSCatalogURL)
	v.SetDefault("sources.fragments_path", "")
	v.SetDefault("sources.offline", false)
	v.SetDefault("sources.http_timeout_secs", 30)
	v.SetDefault("sources.http_max_retries", 3)
	v.SetDefault("sources.cbsa_shapefile", "")
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.csv", true)
	v.SetDefault("output.xlsx", false)
	v.SetDefault("output.report", true)
	v.SetDefault("output.geojson", true)
	v.SetDefault("store.driver", store.DriverNone)
	v.SetDefault("store.database_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the sampling invariants and the outer settings.
func (c *Config) Validate() error {
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return eris.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	switch c.Store.Driver {
	case "", store.DriverNone, store.DriverSQLite:
	case store.DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required for postgres")
		}
	default:
		return eris.Errorf("config: unknown store.driver %q (valid: none, sqlite, postgres)", c.Store.Driver)
	}
	if c.Sources.HTTPTimeoutSecs < 0 || c.Sources.HTTPMaxRetries < 0 {
		return eris.New("config: sources http settings must not be negative")
	}
	return nil
}

// StrataTable returns the configured strata table, or the built-in one.
func (c *Config) StrataTable() (strata.Table, error) {
	if c.Strata.TablePath == "" {
		return strata.DefaultTable(), nil
	}
	return strata.LoadTable(c.Strata.TablePath)
}

// ResolverOptions returns the resolver options implied by the sources
// section. An empty fragments path keeps the built-in fragment table.
func (c *Config) ResolverOptions() ([]resolve.Option, error) {
	if c.Sources.FragmentsPath == "" {
		return nil, nil
	}
	fragments, err := resolve.LoadFragments(c.Sources.FragmentsPath)
	if err != nil {
		return nil, err
	}
	return []resolve.Option{resolve.WithFragments(fragments)}, nil
}

// HTTPOptions builds the fetcher options from the sources section.
func (c *Config) HTTPOptions() fetcher.HTTPOptions {
	return fetcher.HTTPOptions{
		Timeout:    time.Duration(c.Sources.HTTPTimeoutSecs) * time.Second,
		MaxRetries: c.Sources.HTTPMaxRetries,
		Limiters:   fetcher.DefaultLimiters(),
	}
}

// SourceOptions builds the loader options from the sources section.
func (c *Config) SourceOptions(resolverOpts []resolve.Option) sources.Options {
	return sources.Options{
		Census: sources.CensusOptions{
			BaseURL: c.Sources.CensusBaseURL,
			Year:    c.Sources.CensusYear,
			APIKey:  c.Sources.CensusAPIKey,
		},
		NTDDir:          c.Sources.NTDDir,
		GBFSCatalogURL:  c.Sources.GBFSCatalogURL,
		Offline:         c.Sources.Offline,
		ResolverOptions: resolverOpts,
	}
}

// ReportOptions maps the output section onto the report writer.
func (c *Config) ReportOptions() report.Options {
	return report.Options{
		CSV:     c.Output.CSV,
		XLSX:    c.Output.XLSX,
		Report:  c.Output.Report,
		GeoJSON: c.Output.GeoJSON,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
