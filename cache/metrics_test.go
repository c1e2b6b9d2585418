package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	metadata := New[string, int](Config{Name: "type_metadata", MaxSize: 1})
	metadata.Set("a", 1)
	metadata.Set("b", 2)
	metadata.Get("b")
	metadata.Get("a")

	resources := New[string, string](Config{Name: "sql_resources"})
	resources.Set("GetAlbums.sql", "SELECT 1")

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector("dbmap", metadata, resources)))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName() + "/" + m.GetLabel()[0].GetValue()
			if m.GetCounter() != nil {
				values[key] = m.GetCounter().GetValue()
			} else {
				values[key] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["dbmap_cache_hits_total/type_metadata"])
	assert.Equal(t, 1.0, values["dbmap_cache_misses_total/type_metadata"])
	assert.Equal(t, 1.0, values["dbmap_cache_evictions_total/type_metadata"])
	assert.Equal(t, 1.0, values["dbmap_cache_entries/type_metadata"])
	assert.Equal(t, 1.0, values["dbmap_cache_entries/sql_resources"])
	assert.Equal(t, 0.0, values["dbmap_cache_hits_total/sql_resources"])
}
