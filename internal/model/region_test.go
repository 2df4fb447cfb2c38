package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStratum_String(t *testing.T) {
	s := Stratum{Population: "Large", Rail: RailLabel, Mobility: NoSharedMobilityLabel, CensusRegion: "West"}
	assert.Equal(t, "Large_Rail_NoSM_West", s.String())
}

func TestStratum_ComparableAsKey(t *testing.T) {
	a := Stratum{Population: "Small", Rail: NoRailLabel, Mobility: SharedMobilityLabel, CensusRegion: "South"}
	b := Stratum{Population: "Small", Rail: NoRailLabel, Mobility: SharedMobilityLabel, CensusRegion: "South"}

	m := map[Stratum]int{a: 1}
	m[b]++
	assert.Equal(t, 2, m[a])
	assert.Len(t, m, 1)
}

func TestStratum_Less(t *testing.T) {
	a := Stratum{Population: "Large", Rail: "NoRail", Mobility: "NoSM", CensusRegion: "West"}
	b := Stratum{Population: "Large", Rail: "Rail", Mobility: "NoSM", CensusRegion: "Midwest"}
	c := Stratum{Population: "Large", Rail: "Rail", Mobility: "NoSM", CensusRegion: "South"}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(c))
}

func TestStratum_IsZero(t *testing.T) {
	assert.True(t, Stratum{}.IsZero())
	assert.False(t, Stratum{Population: "Mega"}.IsZero())
}

func TestSample_CountByMethod(t *testing.T) {
	s := &Sample{Records: []SampleRecord{
		{SelectionMethod: SelectionMandatory},
		{SelectionMethod: SelectionMandatory},
		{SelectionMethod: SelectionStratifiedRandom},
		{SelectionMethod: SelectionCoverageBoost},
	}}
	counts := s.CountByMethod()
	assert.Equal(t, 2, counts[SelectionMandatory])
	assert.Equal(t, 1, counts[SelectionStratifiedRandom])
	assert.Equal(t, 1, counts[SelectionCoverageBoost])
	assert.Equal(t, 4, s.Len())
}

func TestSample_AllocatedStrata(t *testing.T) {
	west := Stratum{Population: "Small", Rail: "NoRail", Mobility: "NoSM", CensusRegion: "West"}
	south := Stratum{Population: "Small", Rail: "NoRail", Mobility: "NoSM", CensusRegion: "South"}
	s := &Sample{Allocation: map[Stratum]int{west: 2, south: 1}}
	assert.Equal(t, []Stratum{south, west}, s.AllocatedStrata())
}
