package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeTable(t *testing.T) {
	table := NewCompositeTable()
	cv := newTestRaster([]float32{0.1}, 1, 1)
	p50 := newTestRaster([]float32{0.5}, 1, 1)

	table.Add("ndvi", "01", "cv", cv)
	table.Add("ndvi", "01", "p50", p50)
	table.Add("ndvi", "03", "cv", newTestRaster([]float32{0.2}, 1, 1))
	table.Add("evi", "01", "cv", newTestRaster([]float32{0.3}, 1, 1))

	keys := table.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, CompositeKey{Band: "ndvi", Period: "01"}, keys[0])
	assert.Equal(t, CompositeKey{Band: "ndvi", Period: "03"}, keys[1])
	assert.Equal(t, CompositeKey{Band: "evi", Period: "01"}, keys[2])

	assert.Equal(t, 4, table.Len())

	entries := table.Entries(keys[0])
	require.Len(t, entries, 2)
	assert.Equal(t, "cv", entries[0].Statistic)
	assert.Equal(t, "p50", entries[1].Statistic)

	assert.Same(t, p50, table.Raster("ndvi", "01", "p50"))
	assert.Nil(t, table.Raster("ndvi", "02", "p50"))
	assert.Nil(t, table.Raster("ndvi", "01", "p75"))
}

func TestQuantileLabel(t *testing.T) {
	assert.Equal(t, "p10", QuantileLabel(0.10))
	assert.Equal(t, "p25", QuantileLabel(0.25))
	assert.Equal(t, "p50", QuantileLabel(0.50))
	assert.Equal(t, "p90", QuantileLabel(0.90))
}
