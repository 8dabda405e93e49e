package processor

import (
	"fmt"
	"sort"

	"github.com/nci/terracomp/utils"
)

// ClassRange maps the closed input value interval [Lo, Hi] to one
// output class id.
type ClassRange struct {
	Lo, Hi int32
	Class  int32
}

// ReclassTable is an immutable value remapping table built once from
// integer ranges. Values outside every range map to the default
// class.
type ReclassTable struct {
	ranges []ClassRange
	def    int32
	lookup [256]int32
}

// NewReclassTable validates and freezes a set of class ranges. Input
// values in [0, 255] are resolved through a precomputed lookup.
func NewReclassTable(ranges []ClassRange, defaultClass int32) (*ReclassTable, error) {
	sorted := make([]ClassRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	for i, r := range sorted {
		if r.Lo > r.Hi {
			return nil, fmt.Errorf("invalid class range [%d, %d]", r.Lo, r.Hi)
		}
		if i > 0 && r.Lo <= sorted[i-1].Hi {
			return nil, fmt.Errorf("overlapping class ranges [%d, %d] and [%d, %d]",
				sorted[i-1].Lo, sorted[i-1].Hi, r.Lo, r.Hi)
		}
	}

	t := &ReclassTable{ranges: sorted, def: defaultClass}
	for v := 0; v < 256; v++ {
		t.lookup[v] = t.resolve(int32(v))
	}
	return t, nil
}

func (t *ReclassTable) resolve(v int32) int32 {
	for _, r := range t.ranges {
		if v >= r.Lo && v <= r.Hi {
			return r.Class
		}
	}
	return t.def
}

// Class maps one input value to its output class id.
func (t *ReclassTable) Class(v int32) int32 {
	if v >= 0 && v < 256 {
		return t.lookup[v]
	}
	return t.resolve(v)
}

// DefaultCroplandTable reproduces the cropland product remapping:
// crop classes 1..5 shift down to 0..4, developed classes 22..24
// collapse to 5 and everything else becomes the background class 6.
func DefaultCroplandTable() *ReclassTable {
	t, _ := NewReclassTable([]ClassRange{
		{Lo: 1, Hi: 1, Class: 0},
		{Lo: 2, Hi: 2, Class: 1},
		{Lo: 3, Hi: 3, Class: 2},
		{Lo: 4, Hi: 4, Class: 3},
		{Lo: 5, Hi: 5, Class: 4},
		{Lo: 22, Hi: 24, Class: 5},
	}, 6)
	return t
}

// Apply remaps a categorical raster after an optional median filter
// pass that knocks out salt and pepper noise. filterSize is the side
// of the square filter window; values below 2 disable filtering.
func (t *ReclassTable) Apply(r *utils.Int32Raster, filterSize int) *utils.Int32Raster {
	src := r.Data
	if filterSize >= 2 {
		src = medianFilter(r.Data, r.Height, r.Width, filterSize)
	}

	out := &utils.Int32Raster{
		NameSpace:    r.NameSpace,
		Data:         make([]int32, len(src)),
		Height:       r.Height,
		Width:        r.Width,
		NoData:       r.NoData,
		GeoTransform: r.GeoTransform,
		Proj:         r.Proj,
	}
	for i, v := range src {
		out.Data[i] = t.Class(v)
	}
	return out
}

// medianFilter runs a size x size median window over the grid with
// edge replication at the borders.
func medianFilter(data []int32, height, width, size int) []int32 {
	out := make([]int32, len(data))
	half := size / 2
	window := make([]int32, 0, size*size)

	clamp := func(v, hi int) int {
		if v < 0 {
			return 0
		}
		if v > hi {
			return hi
		}
		return v
	}

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			window = window[:0]
			for dr := -half; dr <= half; dr++ {
				for dc := -half; dc <= half; dc++ {
					rr := clamp(row+dr, height-1)
					cc := clamp(col+dc, width-1)
					window = append(window, data[rr*width+cc])
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out[row*width+col] = window[len(window)/2]
		}
	}
	return out
}
