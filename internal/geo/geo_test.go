package geo

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCBSAShapefile writes a two-record polygon shapefile and returns the
// .shp path.
func writeCBSAShapefile(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "cbsa.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("CBSAFP", 5)}))

	square := func(minX, minY, maxX, maxY float64) *shp.Polygon {
		p := shp.Polygon(*shp.NewPolyLine([][]shp.Point{{
			{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY},
			{X: maxX, Y: minY}, {X: minX, Y: minY},
		}}))
		return &p
	}

	row := w.Write(square(-75, 40, -73, 41))
	require.NoError(t, w.WriteAttribute(int(row), 0, "35620"))
	row = w.Write(square(-119, 33, -117, 35))
	require.NoError(t, w.WriteAttribute(int(row), 0, "31080"))
	w.Close()
	// go-shp names the table "<base>dbf" without the dot.
	require.NoError(t, os.Rename(filepath.Join(dir, "cbsadbf"), filepath.Join(dir, "cbsa.dbf")))

	return path
}

func zipDir(t *testing.T, dir, dest string) {
	t.Helper()

	f, err := os.Create(dest)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		src, err := os.Open(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		dst, err := zw.Create("tl_2024_us_cbsa/" + e.Name())
		require.NoError(t, err)
		_, err = io.Copy(dst, src)
		require.NoError(t, err)
		require.NoError(t, src.Close())
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func TestBuiltinCentroids(t *testing.T) {
	c := BuiltinCentroids()
	assert.Len(t, c, 53)

	p, ok := c.Lookup("35620")
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 40.7, Lon: -74.0}, p)

	_, ok = c.Lookup("99999")
	assert.False(t, ok)

	// Returned maps are copies.
	c["35620"] = Point{}
	p, _ = BuiltinCentroids().Lookup("35620")
	assert.Equal(t, 40.7, p.Lat)
}

func TestCentroids_Merge(t *testing.T) {
	base := Centroids{"a": {1, 1}, "b": {2, 2}}
	merged := base.Merge(Centroids{"b": {3, 3}, "c": {4, 4}})

	assert.Equal(t, Centroids{"a": {1, 1}, "b": {3, 3}, "c": {4, 4}}, merged)
	assert.Equal(t, Point{2, 2}, base["b"])
	assert.Equal(t, []string{"a", "b", "c"}, merged.IDs())
}

func TestLoadCBSACentroids_Shapefile(t *testing.T) {
	path := writeCBSAShapefile(t, t.TempDir())

	c, err := LoadCBSACentroids(path)
	require.NoError(t, err)
	require.Len(t, c, 2)

	assert.InDelta(t, 40.5, c["35620"].Lat, 1e-9)
	assert.InDelta(t, -74.0, c["35620"].Lon, 1e-9)
	assert.InDelta(t, 34.0, c["31080"].Lat, 1e-9)
	assert.InDelta(t, -118.0, c["31080"].Lon, 1e-9)
}

func TestLoadCBSACentroids_Zip(t *testing.T) {
	shpDir := t.TempDir()
	writeCBSAShapefile(t, shpDir)
	zipPath := filepath.Join(t.TempDir(), "tl_2024_us_cbsa.zip")
	zipDir(t, shpDir, zipPath)

	c, err := LoadCBSACentroids(zipPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"31080", "35620"}, c.IDs())
}

func TestLoadCBSACentroids_Errors(t *testing.T) {
	_, err := LoadCBSACentroids(filepath.Join(t.TempDir(), "missing.shp"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(empty)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())

	_, err = LoadCBSACentroids(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find .shp file")
}

func TestLoadCBSACentroids_MissingField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nofield.shp")
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 20)}))
	row := w.Write(&shp.Point{X: 1, Y: 2})
	require.NoError(t, w.WriteAttribute(int(row), 0, "Somewhere"))
	w.Close()
	require.NoError(t, os.Rename(filepath.Join(dir, "nofielddbf"), filepath.Join(dir, "nofield.dbf")))

	_, err = LoadCBSACentroids(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CBSAFP")
}

func TestToGeom(t *testing.T) {
	assert.Nil(t, toGeom(nil))
	assert.Nil(t, toGeom(&shp.PolyLine{}))
	assert.Nil(t, toGeom(&shp.Polygon{}))

	g := toGeom(&shp.Point{X: -90, Y: 30})
	require.NotNil(t, g)
	assert.Equal(t, Point{Lat: 30, Lon: -90}, center(g.Bounds()))
}
