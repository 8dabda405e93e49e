package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nci/terracomp/utils"
)

// newClassRaster builds a height x width categorical raster on a unit
// grid with the origin at the top left, filled with the background
// class 0.
func newClassRaster(height, width int) *utils.Int32Raster {
	return &utils.Int32Raster{
		NameSpace:    "classes",
		Data:         make([]int32, height*width),
		Height:       height,
		Width:        width,
		NoData:       255,
		GeoTransform: [6]float64{0, 1, 0, float64(height), 0, -1},
		Proj:         `PROJCS["WGS 84 / UTM zone 55S"]`,
	}
}

func fillBlock(r *utils.Int32Raster, row0, row1, col0, col1 int, class int32) {
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			r.Data[row*r.Width+col] = class
		}
	}
}

func newTestClusterSampler(minPixels, minClusterSize int, minDensity float64) *DensityClusterSampler {
	return NewDensityClusterSampler(1.5, 4, minPixels, 2, minClusterSize, minDensity,
		rand.New(rand.NewSource(42)))
}

func TestDensityClusterSample(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)

	s := newTestClusterSampler(10, 5, 0.5)
	set, skipped := s.Sample(r, map[int32]int{1: 10}, nil)

	assert.Empty(t, skipped)
	require.Len(t, set.Points, 10)
	for _, p := range set.Points {
		assert.Equal(t, int32(1), p.Class)
		assert.GreaterOrEqual(t, p.X, 10.5)
		assert.LessOrEqual(t, p.X, 14.5)
		assert.GreaterOrEqual(t, p.Y, 25.5)
		assert.LessOrEqual(t, p.Y, 29.5)
	}
	assert.Equal(t, r.Proj, set.Proj)
}

func TestDensityClusterSampleMinPixels(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1) // 25 candidates

	s := newTestClusterSampler(26, 5, 0.5)
	set, skipped := s.Sample(r, map[int32]int{1: 10}, nil)

	assert.Equal(t, []int32{1}, skipped)
	assert.Empty(t, set.Points)
}

func TestDensityClusterSampleDensityBoundary(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)
	fillBlock(r, 10, 14, 25, 29, 1)

	// two clusters of 25 over 50 candidates, density exactly 0.5 each;
	// the threshold is inclusive so both survive
	s := newTestClusterSampler(10, 5, 0.5)
	set, skipped := s.Sample(r, map[int32]int{1: 5}, nil)
	assert.Empty(t, skipped)
	assert.Len(t, set.Points, 10)

	// just above the boundary both clusters are rejected, yet the
	// class is not reported as skipped
	s = newTestClusterSampler(10, 5, 0.51)
	set, skipped = s.Sample(r, map[int32]int{1: 5}, nil)
	assert.Empty(t, skipped)
	assert.Empty(t, set.Points)
}

func TestDensityClusterSampleMinClusterSize(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)

	s := newTestClusterSampler(10, 26, 0)
	set, skipped := s.Sample(r, map[int32]int{1: 5}, nil)
	assert.Empty(t, skipped)
	assert.Empty(t, set.Points)
}

func TestDensityClusterSampleQuotaAboveClusterSize(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)

	s := newTestClusterSampler(10, 5, 0.5)
	set, _ := s.Sample(r, map[int32]int{1: 100}, nil)
	assert.Len(t, set.Points, 25)
}

func TestDensityClusterSampleSeedReproducible(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)
	fillBlock(r, 20, 26, 20, 26, 2)
	quotas := map[int32]int{1: 8, 2: 8}

	a, _ := newTestClusterSampler(10, 5, 0.5).Sample(r, quotas, nil)
	b, _ := newTestClusterSampler(10, 5, 0.5).Sample(r, quotas, nil)
	assert.Equal(t, a, b)
}

func TestDensityClusterSampleMask(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)
	fillBlock(r, 10, 14, 25, 29, 1)

	// mask away the second block, leaving one cluster of density 1
	mask := make([]bool, len(r.Data))
	for row := 0; row < 40; row++ {
		for col := 0; col < 20; col++ {
			mask[row*40+col] = true
		}
	}

	s := newTestClusterSampler(10, 5, 0.9)
	set, skipped := s.Sample(r, map[int32]int{1: 5}, mask)
	assert.Empty(t, skipped)
	require.Len(t, set.Points, 5)
	for _, p := range set.Points {
		assert.Less(t, p.X, 15.0)
	}
}

func TestDensityClusterSampleNegativeClass(t *testing.T) {
	r := newClassRaster(40, 40)
	fillBlock(r, 10, 14, 10, 14, 1)

	s := newTestClusterSampler(10, 5, 0.5)
	set, skipped := s.Sample(r, map[int32]int{-1: 5, 1: 5}, nil)
	assert.Empty(t, skipped)
	for _, p := range set.Points {
		assert.Equal(t, int32(1), p.Class)
	}
}
