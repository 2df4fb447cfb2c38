package universe

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/metro-sampler/internal/model"
)

func TestAggregateAgencies(t *testing.T) {
	agencies := []model.Agency{
		{Name: "DART", RegionID: "19100", HasRail: true},
		{Name: "Trinity Metro", RegionID: "19100"},
		{Name: "DART", RegionID: "19100"},
		{Name: "WMATA", RegionID: "47900", HasRail: true},
		{Name: "Rural Transit", RegionID: ""},
		{Name: "Another Rural", RegionID: ""},
	}

	got, unresolved := AggregateAgencies(agencies)
	assert.Equal(t, 2, unresolved)
	require.Len(t, got, 2)

	dfw := got["19100"]
	assert.Equal(t, 3, dfw.NAgencies)
	assert.Equal(t, "DART; Trinity Metro", dfw.Agencies)
	assert.True(t, dfw.HasRail)

	dc := got["47900"]
	assert.Equal(t, 1, dc.NAgencies)
	assert.Equal(t, "WMATA", dc.Agencies)
}

func TestAggregateAgencies_StableOrder(t *testing.T) {
	agencies := []model.Agency{
		{Name: "B", RegionID: "1"},
		{Name: "A", RegionID: "1"},
		{Name: "C", RegionID: "1"},
	}
	got, _ := AggregateAgencies(agencies)
	assert.Equal(t, "B; A; C", got["1"].Agencies)
	assert.False(t, got["1"].HasRail)
}

func TestAggregateMobility(t *testing.T) {
	systems := []model.MobilitySystem{
		{Name: "Citi Bike", RegionID: "35620"},
		{Name: "Lime", RegionID: "35620"},
		{Name: "Lime", RegionID: "35620"},
		{Name: "Unknown Scooters", RegionID: ""},
	}
	got, unresolved := AggregateMobility(systems)
	assert.Equal(t, 1, unresolved)
	assert.Equal(t, 3, got["35620"].NSystems)
	assert.Equal(t, "Citi Bike; Lime", got["35620"].Systems)
}

func TestAggregate_Empty(t *testing.T) {
	a, n := AggregateAgencies(nil)
	assert.Empty(t, a)
	assert.Zero(t, n)

	m, n := AggregateMobility(nil)
	assert.Empty(t, m)
	assert.Zero(t, n)
}

func TestMerge(t *testing.T) {
	base := []model.Region{
		{ID: "19100", Name: "Dallas-Fort Worth-Arlington, TX", Population: 7_900_000},
		{ID: "41620", Name: "Salt Lake City, UT", Population: 1_270_000, HasRail: true, NAgencies: 9},
	}
	transit := map[string]TransitSummary{
		"19100": {RegionID: "19100", NAgencies: 2, Agencies: "DART; Trinity Metro", HasRail: true},
	}
	mobility := map[string]MobilitySummary{
		"19100": {RegionID: "19100", NSystems: 1, Systems: "Lime"},
	}

	got := Merge(base, transit, mobility)
	require.Len(t, got, 2)

	assert.Equal(t, 2, got[0].NAgencies)
	assert.True(t, got[0].HasRail)
	assert.True(t, got[0].HasSharedMobility)
	assert.Equal(t, "Lime", got[0].SharedMobilityList)

	// Left join: unmatched regions fall back to defaults.
	assert.Zero(t, got[1].NAgencies)
	assert.False(t, got[1].HasRail)
	assert.False(t, got[1].HasSharedMobility)
	assert.Empty(t, got[1].AgencyList)

	// Input untouched.
	assert.True(t, base[1].HasRail)
}

func TestCheck(t *testing.T) {
	regions := []model.Region{
		{ID: "1", Population: 100, NAgencies: 1, HasRail: true},
		{ID: "2", Population: 0},
		{ID: "3", Population: 50},
	}
	rep, err := Check(regions)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Regions)
	assert.Equal(t, int64(150), rep.TotalPopulation)
	assert.Equal(t, []string{"2"}, rep.MissingPopulation)
	assert.Equal(t, 2, rep.WithoutAgencies)
	assert.Equal(t, 1, rep.WithRail)
	assert.Len(t, rep.Warnings, 2)
	assert.False(t, rep.OK())
}

func TestCheck_Clean(t *testing.T) {
	rep, err := Check([]model.Region{
		{ID: "1", Population: 100, NAgencies: 1},
		{ID: "2", Population: 90, NAgencies: 3},
	})
	require.NoError(t, err)
	assert.True(t, rep.OK())
}

func TestCheck_DuplicateIDs(t *testing.T) {
	_, err := Check([]model.Region{
		{ID: "1", Population: 100},
		{ID: "1", Population: 90},
	})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDuplicateRegion))
}
