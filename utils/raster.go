package utils

import (
	"errors"
	"fmt"
	"math"
)

// Raster is the common interface of the in-memory grids moved
// between the stack loader, the composite engines and the samplers.
type Raster interface {
	GetNoData() float64
	Shape() (int, int)
}

// Float32Raster holds a single band of continuous data such as a
// reflectance observation or a composite statistic. Data is stored
// row major. GeoTransform follows the GDAL convention of six affine
// coefficients and Proj holds the projection WKT.
type Float32Raster struct {
	NameSpace     string
	Data          []float32
	Height, Width int
	NoData        float64
	GeoTransform  [6]float64
	Proj          string
}

func (r *Float32Raster) GetNoData() float64 {
	return r.NoData
}

func (r *Float32Raster) Shape() (int, int) {
	return r.Height, r.Width
}

func (r *Float32Raster) At(row, col int) float32 {
	return r.Data[row*r.Width+col]
}

// Int32Raster holds a single band of categorical data where each
// cell is a class id. Negative ids and the NoData sentinel denote
// cells carrying no class.
type Int32Raster struct {
	NameSpace     string
	Data          []int32
	Height, Width int
	NoData        float64
	GeoTransform  [6]float64
	Proj          string
}

func (r *Int32Raster) GetNoData() float64 {
	return r.NoData
}

func (r *Int32Raster) Shape() (int, int) {
	return r.Height, r.Width
}

func (r *Int32Raster) At(row, col int) int32 {
	return r.Data[row*r.Width+col]
}

// NewFloat32Raster returns a raster carrying the georeferencing of ref
// with all pixels initialised to zero. The output convention for
// computed rasters is float32 samples with NaN nodata.
func NewFloat32Raster(ref Raster, nameSpace string) *Float32Raster {
	height, width := ref.Shape()
	out := &Float32Raster{
		NameSpace: nameSpace,
		Data:      make([]float32, height*width),
		Height:    height,
		Width:     width,
		NoData:    math.NaN(),
	}
	switch t := ref.(type) {
	case *Float32Raster:
		out.GeoTransform = t.GeoTransform
		out.Proj = t.Proj
	case *Int32Raster:
		out.GeoTransform = t.GeoTransform
		out.Proj = t.Proj
	}
	return out
}

// ShapeMismatchError reports rasters that are not co-registered.
// It aborts the whole operation that raised it.
type ShapeMismatchError struct {
	Want string
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("rasters are not co-registered: want %s, got %s", e.Want, e.Got)
}

// ErrEmptyWindow signals that no observation falls inside a date
// range. Callers skip the band and range pair and carry on.
var ErrEmptyWindow = errors.New("no observations within date range")

func gridSignature(height, width int, geoTransform [6]float64, proj string) string {
	return fmt.Sprintf("%dx%d gt=%v proj=%.40s", height, width, geoTransform, proj)
}

// SameGrid verifies that two rasters share shape, geotransform and
// projection. Any difference is a fatal precondition failure.
func SameGrid(a, b Raster) error {
	ha, wa := a.Shape()
	hb, wb := b.Shape()
	gta, pa := geoRef(a)
	gtb, pb := geoRef(b)
	if ha != hb || wa != wb || gta != gtb || pa != pb {
		return &ShapeMismatchError{
			Want: gridSignature(ha, wa, gta, pa),
			Got:  gridSignature(hb, wb, gtb, pb),
		}
	}
	return nil
}

func geoRef(r Raster) ([6]float64, string) {
	switch t := r.(type) {
	case *Float32Raster:
		return t.GeoTransform, t.Proj
	case *Int32Raster:
		return t.GeoTransform, t.Proj
	}
	return [6]float64{}, ""
}

// PixelXY maps a pixel location to the ground coordinate of the
// pixel centre.
func PixelXY(geoTransform [6]float64, row, col int) (float64, float64) {
	px := float64(col) + 0.5
	py := float64(row) + 0.5
	x := geoTransform[0] + px*geoTransform[1] + py*geoTransform[2]
	y := geoTransform[3] + px*geoTransform[4] + py*geoTransform[5]
	return x, y
}

// GroundToPixel maps a ground coordinate to the pixel containing it.
// The returned location may lie outside the raster.
func GroundToPixel(geoTransform [6]float64, x, y float64) (int, int) {
	det := geoTransform[1]*geoTransform[5] - geoTransform[2]*geoTransform[4]
	dx := x - geoTransform[0]
	dy := y - geoTransform[3]
	col := (dx*geoTransform[5] - dy*geoTransform[2]) / det
	row := (dy*geoTransform[1] - dx*geoTransform[4]) / det
	return int(math.Floor(row)), int(math.Floor(col))
}

// Bounds returns (xmin, ymin, xmax, ymax) of the raster extent in
// ground coordinates.
func Bounds(geoTransform [6]float64, height, width int) (float64, float64, float64, float64) {
	x0 := geoTransform[0]
	y0 := geoTransform[3]
	x1 := geoTransform[0] + float64(width)*geoTransform[1] + float64(height)*geoTransform[2]
	y1 := geoTransform[3] + float64(width)*geoTransform[4] + float64(height)*geoTransform[5]
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}

// Interior reports whether a pixel lies strictly inside the raster
// with a margin of buffer pixels on every edge. Edge clusters are
// truncated by the raster extent, so sampling discards them.
func Interior(height, width, row, col, buffer int) bool {
	return row > buffer && row < height-buffer && col > buffer && col < width-buffer
}
