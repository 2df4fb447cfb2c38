package model

import "strings"

// UnknownCensusRegion is assigned when a state has no census-region mapping.
const UnknownCensusRegion = "Unknown"

// Rail and shared-mobility stratum labels.
const (
	RailLabel             = "Rail"
	NoRailLabel           = "NoRail"
	SharedMobilityLabel   = "SM"
	NoSharedMobilityLabel = "NoSM"
)

// Region is one canonical metropolitan statistical area. ID is the CBSA code.
type Region struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Population         int64   `json:"population"`
	State              string  `json:"state"`
	CensusRegion       string  `json:"census_region"`
	HasRail            bool    `json:"has_rail"`
	HasSharedMobility  bool    `json:"has_shared_mobility"`
	NAgencies          int     `json:"n_agencies"`
	AgencyList         string  `json:"agency_list,omitempty"`
	NSharedMobility    int     `json:"n_shared_mobility"`
	SharedMobilityList string  `json:"shared_mobility_list,omitempty"`
	Stratum            Stratum `json:"stratum"`
}

// Stratum is the composite stratification key. It is comparable and used
// directly as a map key.
type Stratum struct {
	Population   string `json:"population"`
	Rail         string `json:"rail"`
	Mobility     string `json:"mobility"`
	CensusRegion string `json:"census_region"`
}

// String renders the key as Population_Rail_Mobility_CensusRegion.
func (s Stratum) String() string {
	return strings.Join([]string{s.Population, s.Rail, s.Mobility, s.CensusRegion}, "_")
}

// IsZero reports whether no stratum has been assigned.
func (s Stratum) IsZero() bool {
	return s == Stratum{}
}

// Less orders strata field by field. Used for deterministic tie-breaking.
func (s Stratum) Less(o Stratum) bool {
	if s.Population != o.Population {
		return s.Population < o.Population
	}
	if s.Rail != o.Rail {
		return s.Rail < o.Rail
	}
	if s.Mobility != o.Mobility {
		return s.Mobility < o.Mobility
	}
	return s.CensusRegion < o.CensusRegion
}

// Agency is a transit agency record from the National Transit Database.
// RegionID is empty when the agency's urbanized area could not be resolved.
type Agency struct {
	NTDID    string `json:"ntd_id"`
	Name     string `json:"agency_name"`
	UZAName  string `json:"uza_name,omitempty"`
	RegionID string `json:"region_id"`
	City     string `json:"city"`
	State    string `json:"state"`
	Modes    string `json:"modes"`
	HasRail  bool   `json:"has_rail"`
}

// MobilitySystem is a bikeshare or scooter system from the GBFS catalog.
type MobilitySystem struct {
	SystemID string `json:"system_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	RegionID string `json:"region_id"`
}
