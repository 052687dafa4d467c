package kit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsTrack(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "catalog")

	m.Track("review")(OutcomeOK)
	m.Track("review")(OutcomeOK)
	m.Track("review")(OutcomeNotFound)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ops.WithLabelValues("catalog", "review", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ops.WithLabelValues("catalog", "review", OutcomeNotFound)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
}

func TestMetricsTrackNil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.Track("find")(OutcomeOK) })
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "catalog")
	m.Track("dump")(OutcomeError)

	path := filepath.Join(t.TempDir(), "catalog.prom")
	require.NoError(t, WriteMetrics(path, reg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `catalog_operations_total{op="dump",outcome="error",service="catalog"} 1`)
}
