// Package geo provides approximate CBSA centroids for map output.
package geo

import "sort"

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Centroids maps a CBSA code to its approximate centre.
type Centroids map[string]Point

// Lookup returns the centroid for id.
func (c Centroids) Lookup(id string) (Point, bool) {
	p, ok := c[id]
	return p, ok
}

// Merge returns a copy of c with every entry of over applied on top.
func (c Centroids) Merge(over Centroids) Centroids {
	out := make(Centroids, len(c)+len(over))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// IDs returns the codes in ascending order.
func (c Centroids) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuiltinCentroids returns hand-curated centroids for the largest metros.
// They are good enough for a dot map, not for spatial joins.
func BuiltinCentroids() Centroids {
	out := make(Centroids, len(builtinCentroids))
	for k, v := range builtinCentroids {
		out[k] = v
	}
	return out
}

var builtinCentroids = Centroids{
	"35620": {40.7, -74.0}, "31080": {34.0, -118.2}, "16980": {41.9, -87.6},
	"19100": {32.8, -96.8}, "26420": {29.8, -95.4}, "47900": {38.9, -77.0},
	"33100": {25.8, -80.2}, "37980": {40.0, -75.2}, "12060": {33.7, -84.4},
	"14460": {42.4, -71.1}, "38060": {33.4, -112.1}, "41860": {37.8, -122.4},
	"40140": {33.9, -117.4}, "19820": {42.3, -83.0}, "42660": {47.6, -122.3},
	"33460": {44.97, -93.27}, "41740": {32.7, -117.2}, "45300": {28.0, -82.5},
	"19740": {39.7, -105.0}, "41180": {38.6, -90.2}, "12580": {39.3, -76.6},
	"36740": {28.5, -81.4}, "16740": {35.2, -80.8}, "41700": {29.4, -98.5},
	"38900": {45.5, -122.7}, "40900": {38.6, -121.5}, "38300": {40.4, -80.0},
	"12420": {30.3, -97.7}, "28140": {39.1, -94.6}, "17460": {41.5, -81.7},
	"18140": {40.0, -83.0}, "26900": {39.8, -86.1}, "29820": {36.2, -115.1},
	"34980": {36.2, -86.8}, "47260": {36.8, -76.3}, "39300": {41.8, -71.4},
	"27260": {30.3, -81.7}, "33340": {43.0, -87.9}, "36420": {35.5, -97.5},
	"39580": {35.8, -78.6}, "41620": {40.8, -111.9}, "46060": {32.2, -110.9},
	"46140": {36.2, -96.0}, "10740": {35.1, -106.6}, "36540": {41.3, -96.0},
	"30700": {40.8, -96.7}, "22020": {46.9, -96.8}, "14260": {43.6, -116.2},
	"21340": {31.8, -106.4}, "44060": {47.7, -117.4}, "30020": {34.6, -98.4},
	"24860": {34.9, -82.4}, "13820": {33.5, -86.8},
}
