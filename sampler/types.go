package sampler

import (
	"sort"

	"github.com/nci/terracomp/utils"
)

// SamplePoint is one labelled training or test point in ground
// coordinates.
type SamplePoint struct {
	X, Y  float64
	Class int32
}

// SampleSet is a collection of sample points sharing one projection.
// Duplicate coordinates are permitted; the spatial filters make them
// rare but nothing enforces uniqueness.
type SampleSet struct {
	Proj   string
	Points []SamplePoint
}

// candidateCoords collects the ground coordinates of every pixel of
// one class lying strictly inside the raster with a margin of buffer
// pixels. Coordinates near the edges are discarded so clusters
// truncated by the raster extent never enter the draw. An optional
// mask restricts candidates further, e.g. to an area of interest.
func candidateCoords(r *utils.Int32Raster, class int32, buffer int, mask []bool) [][2]float64 {
	var coords [][2]float64
	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			i := row*r.Width + col
			if r.Data[i] != class {
				continue
			}
			if !utils.Interior(r.Height, r.Width, row, col, buffer) {
				continue
			}
			if mask != nil && !mask[i] {
				continue
			}
			x, y := utils.PixelXY(r.GeoTransform, row, col)
			coords = append(coords, [2]float64{x, y})
		}
	}
	return coords
}

// sortedClasses returns the quota class ids in ascending order so
// per class iteration is deterministic.
func sortedClasses(quotas map[int32]int) []int32 {
	classes := make([]int32, 0, len(quotas))
	for class := range quotas {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}

// sampleValue reads the class id of the pixel containing a ground
// coordinate, or the nodata sentinel when the point falls outside
// the raster.
func sampleValue(r *utils.Int32Raster, x, y float64) int32 {
	row, col := utils.GroundToPixel(r.GeoTransform, x, y)
	if row < 0 || row >= r.Height || col < 0 || col >= r.Width {
		return int32(r.NoData)
	}
	return r.At(row, col)
}
