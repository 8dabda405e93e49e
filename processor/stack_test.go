package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackDatesAndSlice(t *testing.T) {
	r1 := newTestRaster([]float32{1}, 1, 1)
	r2 := newTestRaster([]float32{2}, 1, 1)
	r3 := newTestRaster([]float32{3}, 1, 1)
	stack := &Stack{Band: "B04", Obs: []TemporalObservation{
		{Date: mustDate(t, "20220101"), Raster: r1},
		{Date: mustDate(t, "20220115"), Raster: r2},
		{Date: mustDate(t, "20220201"), Raster: r3},
	}}

	dates := stack.Dates()
	require.Len(t, dates, 3)
	assert.Equal(t, mustDate(t, "20220115"), dates[1])

	slice := stack.Slice(0, 1)
	require.Len(t, slice, 2)
	assert.Same(t, r1, slice[0])
	assert.Same(t, r2, slice[1])

	slice = stack.Slice(2, 2)
	require.Len(t, slice, 1)
	assert.Same(t, r3, slice[0])
}
