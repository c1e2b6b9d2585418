package query

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Metrics(t *testing.T) {
	ctx := context.Background()
	conn := openConnection(t)

	reg := prometheus.NewPedanticRegistry()
	metrics := NewMetrics("dbmap")
	require.NoError(t, metrics.Register(reg))
	e := newExecutor(WithMetrics(metrics))

	_, err := Scalar[int](ctx, e, conn, "SELECT COUNT(*) FROM Album", nil)
	require.NoError(t, err)
	_, err = e.ExecuteNonQuery(ctx, conn, "INSERT INTO Album (AlbumId, Title, ArtistId) VALUES (1, 'x', 1)", nil)
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var observations uint64
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case "dbmap_commands_total":
				labels := map[string]string{}
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				counts[labels["operation"]+"/"+labels["result"]] = m.GetCounter().GetValue()
			case "dbmap_command_duration_seconds":
				observations += m.GetHistogram().GetSampleCount()
			}
		}
	}

	assert.Equal(t, map[string]float64{
		"execute scalar/ok":                 1,
		"execute non-query/duplicate_error": 1,
	}, counts)
	assert.Equal(t, uint64(2), observations)

	assert.Error(t, metrics.Register(reg))
}
