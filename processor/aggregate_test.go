package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/terracomp/utils"
)

const testProj = `PROJCS["WGS 84 / UTM zone 55S"]`

var testGeoTransform = [6]float64{300000, 10, 0, 6000000, 0, -10}

func newTestRaster(data []float32, height, width int) *utils.Float32Raster {
	return &utils.Float32Raster{
		NameSpace:    "ndvi",
		Data:         data,
		Height:       height,
		Width:        width,
		NoData:       math.NaN(),
		GeoTransform: testGeoTransform,
		Proj:         testProj,
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	nan := float32(math.NaN())
	slice := []*utils.Float32Raster{
		newTestRaster([]float32{1, 2, nan, 4}, 2, 2),
		newTestRaster([]float32{2, 2, nan, 4}, 2, 2),
		newTestRaster([]float32{3, 2, nan, nan}, 2, 2),
	}

	out, err := CoefficientOfVariation(slice)
	require.NoError(t, err)

	// pixel 0: samples 1,2,3 -> mean 2, population sd sqrt(2/3)
	assert.InDelta(t, math.Sqrt(2.0/3.0)/2.0, float64(out.Data[0]), 1e-6)
	// pixel 1: constant samples, zero dispersion
	assert.InDelta(t, 0, float64(out.Data[1]), 1e-6)
	// pixel 2: no finite sample
	assert.True(t, math.IsNaN(float64(out.Data[2])))
	// pixel 3: NaN samples are dropped, not propagated
	assert.InDelta(t, 0, float64(out.Data[3]), 1e-6)

	assert.Equal(t, slice[0].GeoTransform, out.GeoTransform)
	assert.Equal(t, slice[0].Proj, out.Proj)
	assert.True(t, math.IsNaN(out.NoData))
}

func TestCoefficientOfVariationOrderIndependent(t *testing.T) {
	slice := []*utils.Float32Raster{
		newTestRaster([]float32{5, 1}, 1, 2),
		newTestRaster([]float32{2, 9}, 1, 2),
		newTestRaster([]float32{8, 4}, 1, 2),
	}
	reversed := []*utils.Float32Raster{slice[2], slice[1], slice[0]}

	a, err := CoefficientOfVariation(slice)
	require.NoError(t, err)
	b, err := CoefficientOfVariation(reversed)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestCoefficientOfVariationEmptySlice(t *testing.T) {
	_, err := CoefficientOfVariation(nil)
	var shapeErr *utils.ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestCoefficientOfVariationShapeMismatch(t *testing.T) {
	a := newTestRaster([]float32{1, 2, 3, 4}, 2, 2)
	b := newTestRaster([]float32{1, 2}, 1, 2)
	_, err := CoefficientOfVariation([]*utils.Float32Raster{a, b})
	var shapeErr *utils.ShapeMismatchError
	assert.ErrorAs(t, err, &shapeErr)
}

func TestQuantiles(t *testing.T) {
	// pixel samples across time: {5,1,3,2,4}
	slice := []*utils.Float32Raster{
		newTestRaster([]float32{5}, 1, 1),
		newTestRaster([]float32{1}, 1, 1),
		newTestRaster([]float32{3}, 1, 1),
		newTestRaster([]float32{2}, 1, 1),
		newTestRaster([]float32{4}, 1, 1),
	}

	out, err := Quantiles(slice, []float64{0.90, 0.10, 0.50})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// linear interpolation over sorted {1,2,3,4,5}
	assert.InDelta(t, 1.4, float64(out[0.10].Data[0]), 1e-6)
	assert.InDelta(t, 3.0, float64(out[0.50].Data[0]), 1e-6)
	assert.InDelta(t, 4.6, float64(out[0.90].Data[0]), 1e-6)
}

func TestQuantilesMedianOddLength(t *testing.T) {
	slice := []*utils.Float32Raster{
		newTestRaster([]float32{9}, 1, 1),
		newTestRaster([]float32{1}, 1, 1),
		newTestRaster([]float32{5}, 1, 1),
	}
	out, err := Quantiles(slice, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, float64(out[0.5].Data[0]), 1e-6)
}

func TestQuantilesAllNaNPixel(t *testing.T) {
	nan := float32(math.NaN())
	slice := []*utils.Float32Raster{
		newTestRaster([]float32{nan, 1}, 1, 2),
		newTestRaster([]float32{nan, 2}, 1, 2),
	}
	out, err := Quantiles(slice, []float64{0.25})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(out[0.25].Data[0])))
	assert.InDelta(t, 1.25, float64(out[0.25].Data[1]), 1e-6)
}

func TestQuantilesSingleObservation(t *testing.T) {
	slice := []*utils.Float32Raster{newTestRaster([]float32{7}, 1, 1)}
	out, err := Quantiles(slice, []float64{0.1, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 7.0, float64(out[0.1].Data[0]), 1e-6)
	assert.InDelta(t, 7.0, float64(out[0.9].Data[0]), 1e-6)
}
