package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/metro-sampler/internal/model"
)

func testSample() *model.Sample {
	return &model.Sample{
		Records: []model.SampleRecord{
			{Region: model.Region{ID: "35620"}, SelectionMethod: model.SelectionMandatory},
			{Region: model.Region{ID: "31080"}, SelectionMethod: model.SelectionMandatory},
			{Region: model.Region{ID: "13820"}, SelectionMethod: model.SelectionStratifiedRandom},
		},
		Coverage:            0.62,
		Converged:           true,
		RebalanceIterations: 4,
	}
}

func TestObserveSample(t *testing.T) {
	m := New()
	m.ObserveSample(testSample())

	assert.InDelta(t, 0.62, testutil.ToFloat64(m.Coverage), 1e-12)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SampleSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Converged))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.RebalanceIterations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Selections.WithLabelValues("mandatory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("stratified_random")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Selections.WithLabelValues("coverage_boost")))

	s := testSample()
	s.Converged = false
	m.ObserveSample(s)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Converged))
}

func TestObserveResolution(t *testing.T) {
	m := New()
	m.ObserveResolution("ntd", 40, 10)
	m.ObserveResolution("ntd", 2, 0)
	m.ObserveResolution("gbfs", 18, 4)

	assert.Equal(t, 42.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ntd", OutcomeResolved)))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("ntd", OutcomeUnresolved)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("gbfs", OutcomeUnresolved)))
}

func TestObserveStage(t *testing.T) {
	m := New()
	m.ObserveStage("select", 20*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration, "metro_sampler_stage_duration_seconds"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSample(testSample())
		m.ObserveResolution("ntd", 1, 1)
		m.ObserveStage("select", time.Second)
	})
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveSample(testSample())

	path := filepath.Join(t.TempDir(), "metro_sampler.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "metro_sampler_population_coverage 0.62")
	assert.Contains(t, string(data), `metro_sampler_selections{method="mandatory"} 2`)

	assert.NoError(t, m.WriteTextfile(""))
	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveResolution("gbfs", 3, 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	expected := `
# HELP metro_sampler_resolutions_total Source records by region resolution outcome
# TYPE metro_sampler_resolutions_total counter
metro_sampler_resolutions_total{outcome="resolved",source="gbfs"} 3
metro_sampler_resolutions_total{outcome="unresolved",source="gbfs"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "metro_sampler_resolutions_total"))
}
