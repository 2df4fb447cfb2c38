// Package sources loads the region universe, transit agencies and
// shared-mobility systems, falling back to curated built-in data whenever a
// remote or local source is unavailable.
package sources

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/metro-sampler/internal/fetcher"
	"github.com/sells-group/metro-sampler/internal/model"
	"github.com/sells-group/metro-sampler/internal/resolve"
)

// Origin records where a dataset came from.
type Origin string

const (
	OriginRemote  Origin = "remote"
	OriginFile    Origin = "file"
	OriginBuiltin Origin = "builtin"
)

// DefaultCensusBaseURL is the Census Data API root.
const DefaultCensusBaseURL = "https://api.census.gov/data"

const (
	censusPopulationVar = "B01003_001E"
	censusGeography     = "metropolitan statistical area/micropolitan statistical area"
)

// CensusOptions configures the ACS population loader.
type CensusOptions struct {
	BaseURL string
	Year    int
	APIKey  string
	Offline bool
}

// Census loads CBSA populations from the ACS 5-year estimates.
type Census struct {
	fetcher fetcher.Fetcher
	opts    CensusOptions
}

// NewCensus creates a Census loader.
func NewCensus(f fetcher.Fetcher, opts CensusOptions) *Census {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCensusBaseURL
	}
	if opts.Year == 0 {
		opts.Year = 2023
	}
	return &Census{fetcher: f, opts: opts}
}

// URL returns the ACS request URL.
func (c *Census) URL() string {
	q := url.Values{}
	q.Set("get", "NAME,"+censusPopulationVar)
	q.Set("for", censusGeography+":*")
	if c.opts.APIKey != "" {
		q.Set("key", c.opts.APIKey)
	}
	return fmt.Sprintf("%s/%d/acs/acs5?%s", strings.TrimRight(c.opts.BaseURL, "/"), c.opts.Year, q.Encode())
}

// FetchRegions returns the metropolitan areas with their populations. Any
// failure falls back to BuiltinRegions.
func (c *Census) FetchRegions(ctx context.Context) ([]model.Region, Origin) {
	log := zap.L().With(zap.String("source", "census"))
	if c.opts.Offline || c.fetcher == nil {
		log.Info("offline: using built-in region list")
		return BuiltinRegions(), OriginBuiltin
	}

	regions, err := c.fetch(ctx)
	if err != nil {
		log.Warn("census api unavailable, using built-in region list", zap.Error(err))
		return BuiltinRegions(), OriginBuiltin
	}
	log.Info("fetched metro areas from census api", zap.Int("regions", len(regions)))
	return regions, OriginRemote
}

func (c *Census) fetch(ctx context.Context) ([]model.Region, error) {
	body, err := c.fetcher.Download(ctx, c.URL())
	if err != nil {
		return nil, eris.Wrap(err, "census: download")
	}
	defer body.Close() //nolint:errcheck

	table, err := fetcher.DecodeTable(body)
	if err != nil {
		return nil, eris.Wrap(err, "census: decode")
	}
	return ParseCensusTable(table)
}

// ParseCensusTable converts a Census API table (header row first) into
// regions. Micropolitan areas and rows without a numeric, non-negative
// population are skipped. The result is sorted by population descending.
func ParseCensusTable(rows [][]string) ([]model.Region, error) {
	if len(rows) == 0 {
		return nil, eris.New("census: empty response")
	}
	nameCol, popCol, idCol := -1, -1, -1
	for i, h := range rows[0] {
		switch h {
		case "NAME":
			nameCol = i
		case censusPopulationVar:
			popCol = i
		case censusGeography:
			idCol = i
		}
	}
	if nameCol < 0 || popCol < 0 || idCol < 0 {
		return nil, eris.Errorf("census: unexpected header %v", rows[0])
	}

	var out []model.Region
	for _, row := range rows[1:] {
		if len(row) <= max(nameCol, popCol, idCol) {
			continue
		}
		name := row[nameCol]
		if !strings.Contains(strings.ToLower(name), "metro") {
			continue
		}
		pop, err := strconv.ParseInt(strings.TrimSpace(row[popCol]), 10, 64)
		if err != nil || pop < 0 {
			continue
		}
		name = resolve.StripMetroSuffix(name)
		out = append(out, model.Region{
			ID:         row[idCol],
			Name:       name,
			Population: pop,
			State:      PrimaryState(name),
		})
	}
	if len(out) == 0 {
		return nil, eris.New("census: no metropolitan areas in response")
	}
	sortRegions(out)
	return out, nil
}

// PrimaryState returns the first state abbreviation of a region name,
// e.g. "NY" for "New York-Newark-Jersey City, NY-NJ-PA".
func PrimaryState(name string) string {
	i := strings.LastIndex(name, ",")
	if i < 0 {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(name[i+1:]), "-")
	return strings.ToUpper(strings.TrimSpace(first))
}

func sortRegions(regions []model.Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Population != regions[j].Population {
			return regions[i].Population > regions[j].Population
		}
		return regions[i].ID < regions[j].ID
	})
}
