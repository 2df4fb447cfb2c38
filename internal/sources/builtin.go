package sources

import (
	"github.com/sells-group/metro-sampler/internal/model"
)

type builtinRegion struct {
	id    string
	name  string
	pop   int64
	state string
}

// 2023 ACS estimates, rounded.
var builtinRegions = []builtinRegion{
	{"35620", "New York-Newark-Jersey City, NY-NJ-PA", 19_498_000, "NY"},
	{"31080", "Los Angeles-Long Beach-Anaheim, CA", 12_872_000, "CA"},
	{"16980", "Chicago-Naperville-Elgin, IL-IN-WI", 9_262_000, "IL"},
	{"19100", "Dallas-Fort Worth-Arlington, TX", 8_100_000, "TX"},
	{"26420", "Houston-The Woodlands-Sugar Land, TX", 7_340_000, "TX"},
	{"47900", "Washington-Arlington-Alexandria, DC-VA-MD-WV", 6_356_000, "DC"},
	{"33100", "Miami-Fort Lauderdale-Pompano Beach, FL", 6_183_000, "FL"},
	{"37980", "Philadelphia-Camden-Wilmington, PA-NJ-DE-MD", 6_246_000, "PA"},
	{"12060", "Atlanta-Sandy Springs-Alpharetta, GA", 6_245_000, "GA"},
	{"14460", "Boston-Cambridge-Newton, MA-NH", 4_941_000, "MA"},
	{"38060", "Phoenix-Mesa-Chandler, AZ", 5_070_000, "AZ"},
	{"41860", "San Francisco-Oakland-Berkeley, CA", 4_566_000, "CA"},
	{"40140", "Riverside-San Bernardino-Ontario, CA", 4_688_000, "CA"},
	{"19820", "Detroit-Warren-Dearborn, MI", 4_340_000, "MI"},
	{"42660", "Seattle-Tacoma-Bellevue, WA", 4_034_000, "WA"},
	{"33460", "Minneapolis-St. Paul-Bloomington, MN-WI", 3_712_000, "MN"},
	{"41740", "San Diego-Chula Vista-Carlsbad, CA", 3_276_000, "CA"},
	{"45300", "Tampa-St. Petersburg-Clearwater, FL", 3_342_000, "FL"},
	{"19740", "Denver-Aurora-Lakewood, CO", 2_986_000, "CO"},
	{"41180", "St. Louis, MO-IL", 2_797_000, "MO"},
	{"12580", "Baltimore-Columbia-Towson, MD", 2_834_000, "MD"},
	{"36740", "Orlando-Kissimmee-Sanford, FL", 2_817_000, "FL"},
	{"16740", "Charlotte-Concord-Gastonia, NC-SC", 2_760_000, "NC"},
	{"41700", "San Antonio-New Braunfels, TX", 2_600_000, "TX"},
	{"38900", "Portland-Vancouver-Hillsboro, OR-WA", 2_510_000, "OR"},
	{"40900", "Sacramento-Roseville-Folsom, CA", 2_420_000, "CA"},
	{"38300", "Pittsburgh, PA", 2_343_000, "PA"},
	{"12420", "Austin-Round Rock-Georgetown, TX", 2_470_000, "TX"},
	{"28140", "Kansas City, MO-KS", 2_210_000, "MO"},
	{"17460", "Cleveland-Elyria, OH", 2_058_000, "OH"},
	{"18140", "Columbus, OH", 2_180_000, "OH"},
	{"26900", "Indianapolis-Carmel-Anderson, IN", 2_140_000, "IN"},
	{"29820", "Las Vegas-Henderson-Paradise, NV", 2_330_000, "NV"},
	{"34980", "Nashville-Davidson--Murfreesboro--Franklin, TN", 2_060_000, "TN"},
	{"47260", "Virginia Beach-Norfolk-Newport News, VA-NC", 1_810_000, "VA"},
	{"39300", "Providence-Warwick, RI-MA", 1_630_000, "RI"},
	{"27260", "Jacksonville, FL", 1_660_000, "FL"},
	{"33340", "Milwaukee-Waukesha, WI", 1_560_000, "WI"},
	{"36420", "Oklahoma City, OK", 1_470_000, "OK"},
	{"39580", "Raleigh-Cary, NC", 1_510_000, "NC"},
	{"32820", "Memphis, TN-MS-AR", 1_340_000, "TN"},
	{"40060", "Richmond, VA", 1_330_000, "VA"},
	{"35380", "New Orleans-Metairie, LA", 1_270_000, "LA"},
	{"31140", "Louisville/Jefferson County, KY-IN", 1_300_000, "KY"},
	{"41620", "Salt Lake City, UT", 1_270_000, "UT"},
	{"24340", "Grand Rapids-Kentwood, MI", 1_100_000, "MI"},
	{"13820", "Birmingham-Hoover, AL", 1_110_000, "AL"},
	{"15380", "Buffalo-Cheektowaga, NY", 1_120_000, "NY"},
	{"25540", "Hartford-East Hartford-Middletown, CT", 1_200_000, "CT"},
	{"40380", "Rochester, NY", 1_080_000, "NY"},
	{"46060", "Tucson, AZ", 1_050_000, "AZ"},
	{"46140", "Tulsa, OK", 1_040_000, "OK"},
	{"24860", "Greenville-Anderson, SC", 950_000, "SC"},
	{"26620", "Huntsville, AL", 510_000, "AL"},
	{"16860", "Chattanooga, TN-GA", 580_000, "TN"},
	{"21340", "El Paso, TX", 870_000, "TX"},
	{"10740", "Albuquerque, NM", 920_000, "NM"},
	{"36540", "Omaha-Council Bluffs, NE-IA", 970_000, "NE"},
	{"44700", "Stockton, CA", 790_000, "CA"},
	{"17900", "Columbia, SC", 850_000, "SC"},
	{"30460", "Lexington-Fayette, KY", 530_000, "KY"},
	{"30700", "Lincoln, NE", 350_000, "NE"},
	{"43340", "Shreveport-Bossier City, LA", 390_000, "LA"},
	{"22180", "Fayetteville, NC", 390_000, "NC"},
	{"10580", "Albany-Schenectady-Troy, NY", 900_000, "NY"},
	{"44060", "Spokane-Spokane Valley, WA", 600_000, "WA"},
	{"22020", "Fargo, ND-MN", 270_000, "ND"},
	{"14260", "Boise City, ID", 810_000, "ID"},
	{"11700", "Asheville, NC", 480_000, "NC"},
	{"30020", "Lawton, OK", 125_000, "OK"},
	{"48900", "Wilmington, NC", 310_000, "NC"},
	{"25860", "Hickory-Lenoir-Morganton, NC", 370_000, "NC"},
	{"20500", "Durham-Chapel Hill, NC", 650_000, "NC"},
}

// BuiltinRegions returns the curated offline universe, sorted by
// population descending.
func BuiltinRegions() []model.Region {
	out := make([]model.Region, 0, len(builtinRegions))
	for _, b := range builtinRegions {
		out = append(out, model.Region{ID: b.id, Name: b.name, Population: b.pop, State: b.state})
	}
	sortRegions(out)
	return out
}

// BuiltinAgencies returns the curated agency list. Region ids are assigned
// directly rather than resolved.
func BuiltinAgencies() []model.Agency {
	rows := []struct {
		region, name, city, state, modes string
		rail                             bool
	}{
		{"35620", "MTA New York City Transit", "New York", "NY", "HR,Bus", true},
		{"35620", "MTA Bus Company", "New York", "NY", "Bus", false},
		{"35620", "NJ Transit", "Newark", "NJ", "CR,Bus,LR", true},
		{"35620", "Port Authority Trans-Hudson", "New York", "NY", "HR", true},
		{"31080", "LA Metro", "Los Angeles", "CA", "HR,LR,Bus", true},
		{"31080", "OCTA", "Orange", "CA", "Bus", false},
		{"31080", "Metrolink", "Los Angeles", "CA", "CR", true},
		{"16980", "CTA", "Chicago", "IL", "HR,Bus", true},
		{"16980", "Metra", "Chicago", "IL", "CR", true},
		{"16980", "Pace", "Arlington Heights", "IL", "Bus", false},
		{"19100", "DART", "Dallas", "TX", "LR,Bus", true},
		{"19100", "Trinity Metro", "Fort Worth", "TX", "Bus,CR", true},
		{"26420", "METRO Houston", "Houston", "TX", "LR,Bus", true},
		{"47900", "WMATA", "Washington", "DC", "HR,Bus", true},
		{"33100", "Miami-Dade Transit", "Miami", "FL", "HR,Bus", true},
		{"33100", "Broward County Transit", "Fort Lauderdale", "FL", "Bus", false},
		{"37980", "SEPTA", "Philadelphia", "PA", "HR,CR,LR,Bus", true},
		{"12060", "MARTA", "Atlanta", "GA", "HR,Bus", true},
		{"14460", "MBTA", "Boston", "MA", "HR,CR,LR,Bus", true},
		{"38060", "Valley Metro", "Phoenix", "AZ", "LR,Bus", true},
		{"41860", "BART", "San Francisco", "CA", "HR", true},
		{"41860", "SF Muni", "San Francisco", "CA", "LR,Bus", true},
		{"40140", "Omnitrans", "San Bernardino", "CA", "Bus", false},
		{"19820", "DDOT", "Detroit", "MI", "Bus", false},
		{"19820", "SMART", "Detroit", "MI", "Bus", false},
		{"42660", "Sound Transit", "Seattle", "WA", "LR,CR,Bus", true},
		{"42660", "King County Metro", "Seattle", "WA", "Bus", false},
		{"33460", "Metro Transit", "Minneapolis", "MN", "LR,Bus", true},
		{"41740", "MTS San Diego", "San Diego", "CA", "LR,Bus", true},
		{"45300", "HART", "Tampa", "FL", "Bus", false},
		{"19740", "RTD Denver", "Denver", "CO", "LR,CR,Bus", true},
		{"41180", "Metro St. Louis", "St. Louis", "MO", "LR,Bus", true},
		{"12580", "MTA Maryland", "Baltimore", "MD", "HR,LR,Bus", true},
		{"36740", "LYNX Orlando", "Orlando", "FL", "Bus", false},
		{"16740", "CATS Charlotte", "Charlotte", "NC", "LR,Bus", true},
		{"41700", "VIA Metropolitan Transit", "San Antonio", "TX", "Bus", false},
		{"38900", "TriMet", "Portland", "OR", "LR,CR,Bus", true},
		{"40900", "SacRT", "Sacramento", "CA", "LR,Bus", true},
		{"38300", "Pittsburgh Regional Transit", "Pittsburgh", "PA", "LR,Bus", true},
		{"12420", "Cap Metro", "Austin", "TX", "Bus,CR", true},
		{"28140", "KCATA", "Kansas City", "MO", "Bus", false},
		{"17460", "GCRTA", "Cleveland", "OH", "HR,Bus", true},
		{"18140", "COTA", "Columbus", "OH", "Bus", false},
		{"26900", "IndyGo", "Indianapolis", "IN", "Bus", false},
		{"29820", "RTC Southern Nevada", "Las Vegas", "NV", "Bus", false},
		{"34980", "WeGo Nashville", "Nashville", "TN", "Bus", false},
		{"47260", "Hampton Roads Transit", "Norfolk", "VA", "LR,Bus", true},
		{"39300", "RIPTA", "Providence", "RI", "Bus", false},
		{"27260", "JTA", "Jacksonville", "FL", "Bus", false},
		{"33340", "MCTS Milwaukee", "Milwaukee", "WI", "Bus", false},
		{"36420", "EMBARK OKC", "Oklahoma City", "OK", "Bus", false},
		{"41620", "UTA", "Salt Lake City", "UT", "LR,CR,Bus", true},
		{"46060", "Sun Tran Tucson", "Tucson", "AZ", "Bus", false},
		{"46140", "Tulsa Transit", "Tulsa", "OK", "Bus", false},
		{"21340", "Sun Metro El Paso", "El Paso", "TX", "Bus", false},
		{"10740", "ABQ Ride", "Albuquerque", "NM", "Bus", false},
		{"36540", "Metro Transit Omaha", "Omaha", "NE", "Bus", false},
		{"30700", "StarTran", "Lincoln", "NE", "Bus", false},
		{"22020", "MATBUS", "Fargo", "ND", "Bus", false},
		{"14260", "Valley Regional Transit", "Boise", "ID", "Bus", false},
	}
	out := make([]model.Agency, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Agency{
			Name:     r.name,
			RegionID: r.region,
			City:     r.city,
			State:    r.state,
			Modes:    r.modes,
			HasRail:  r.rail,
		})
	}
	return out
}

// RailRegions returns the region ids with at least one rail agency in the
// curated list. NTD agency files carry no mode column, so this set supplies
// the rail flag for parsed agencies.
func RailRegions() map[string]bool {
	out := make(map[string]bool)
	for _, a := range BuiltinAgencies() {
		if a.HasRail {
			out[a.RegionID] = true
		}
	}
	return out
}

// BuiltinSystems returns the curated shared-mobility systems.
func BuiltinSystems() []model.MobilitySystem {
	return []model.MobilitySystem{
		{SystemID: "citi_bike_nyc", Name: "Citi Bike", Location: "New York, US", RegionID: "35620"},
		{SystemID: "metro_bike_la", Name: "Metro Bike Share", Location: "Los Angeles, US", RegionID: "31080"},
		{SystemID: "divvy_chicago", Name: "Divvy", Location: "Chicago, US", RegionID: "16980"},
		{SystemID: "capital_bikeshare", Name: "Capital Bikeshare", Location: "Washington DC, US", RegionID: "47900"},
		{SystemID: "bluebikes", Name: "Bluebikes", Location: "Boston, US", RegionID: "14460"},
		{SystemID: "bay_wheels", Name: "Bay Wheels", Location: "San Francisco, US", RegionID: "41860"},
		{SystemID: "nice_ride", Name: "Nice Ride", Location: "Minneapolis, US", RegionID: "33460"},
		{SystemID: "bcycle_denver", Name: "Denver B-cycle", Location: "Denver, US", RegionID: "19740"},
		{SystemID: "bcycle_austin", Name: "Austin B-cycle", Location: "Austin, US", RegionID: "12420"},
		{SystemID: "indego", Name: "Indego", Location: "Philadelphia, US", RegionID: "37980"},
		{SystemID: "cogo", Name: "CoGo", Location: "Columbus, US", RegionID: "18140"},
		{SystemID: "relay_atlanta", Name: "Relay", Location: "Atlanta, US", RegionID: "12060"},
		{SystemID: "healthy_ride", Name: "Healthy Ride", Location: "Pittsburgh, US", RegionID: "38300"},
		{SystemID: "biketown", Name: "BIKETOWN", Location: "Portland, US", RegionID: "38900"},
		{SystemID: "bcycle_charlotte", Name: "Charlotte B-cycle", Location: "Charlotte, US", RegionID: "16740"},
		{SystemID: "lime_seattle", Name: "Lime", Location: "Seattle, US", RegionID: "42660"},
		{SystemID: "bird_nashville", Name: "Bird", Location: "Nashville, US", RegionID: "34980"},
		{SystemID: "lime_san_diego", Name: "Lime", Location: "San Diego, US", RegionID: "41740"},
		{SystemID: "lime_salt_lake", Name: "Lime", Location: "Salt Lake City, US", RegionID: "41620"},
		{SystemID: "pacers_indianapolis", Name: "Pacers Bikeshare", Location: "Indianapolis, US", RegionID: "26900"},
		{SystemID: "bublr_milwaukee", Name: "Bublr Bikes", Location: "Milwaukee, US", RegionID: "33340"},
		{SystemID: "greenbike_slc", Name: "GREENbike", Location: "Salt Lake City, US", RegionID: "41620"},
	}
}
