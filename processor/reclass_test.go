package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/terracomp/utils"
)

func TestDefaultCroplandTable(t *testing.T) {
	table := DefaultCroplandTable()

	assert.Equal(t, int32(0), table.Class(1))
	assert.Equal(t, int32(4), table.Class(5))
	assert.Equal(t, int32(5), table.Class(22))
	assert.Equal(t, int32(5), table.Class(23))
	assert.Equal(t, int32(5), table.Class(24))
	assert.Equal(t, int32(6), table.Class(0))
	assert.Equal(t, int32(6), table.Class(6))
	assert.Equal(t, int32(6), table.Class(21))
	assert.Equal(t, int32(6), table.Class(25))
	assert.Equal(t, int32(6), table.Class(255))
	assert.Equal(t, int32(6), table.Class(1000))
	assert.Equal(t, int32(6), table.Class(-1))
}

func TestNewReclassTableValidation(t *testing.T) {
	_, err := NewReclassTable([]ClassRange{{Lo: 5, Hi: 2, Class: 0}}, 0)
	assert.Error(t, err)

	_, err = NewReclassTable([]ClassRange{
		{Lo: 1, Hi: 5, Class: 0},
		{Lo: 4, Hi: 8, Class: 1},
	}, 0)
	assert.Error(t, err)

	_, err = NewReclassTable([]ClassRange{
		{Lo: 4, Hi: 8, Class: 1},
		{Lo: 1, Hi: 3, Class: 0},
	}, 0)
	require.NoError(t, err)
}

func newClassRaster(data []int32, height, width int) *utils.Int32Raster {
	return &utils.Int32Raster{
		NameSpace:    "classes",
		Data:         data,
		Height:       height,
		Width:        width,
		NoData:       math.NaN(),
		GeoTransform: testGeoTransform,
		Proj:         testProj,
	}
}

func TestReclassApplyMedianFilter(t *testing.T) {
	// a lone value 22 surrounded by 2s vanishes under the 3x3 median
	data := []int32{
		2, 2, 2,
		2, 22, 2,
		2, 2, 2,
	}
	r := newClassRaster(data, 3, 3)
	table := DefaultCroplandTable()

	out := table.Apply(r, 3)
	for i := range out.Data {
		assert.Equal(t, int32(1), out.Data[i], "pixel %d", i)
	}
	assert.Equal(t, r.GeoTransform, out.GeoTransform)
	assert.Equal(t, r.Proj, out.Proj)
}

func TestReclassApplyNoFilter(t *testing.T) {
	data := []int32{
		2, 2, 2,
		2, 22, 2,
		2, 2, 2,
	}
	out := DefaultCroplandTable().Apply(newClassRaster(data, 3, 3), 0)
	assert.Equal(t, int32(5), out.Data[4])
	assert.Equal(t, int32(1), out.Data[0])
}
