package processor

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nci/terracomp/utils"
)

// validateSlice checks the preconditions shared by the temporal
// aggregates: a non-empty, co-registered stack slice. An empty slice
// means the caller failed to skip an empty window first.
func validateSlice(slice []*utils.Float32Raster) error {
	if len(slice) == 0 {
		return &utils.ShapeMismatchError{Want: "at least one observation", Got: "empty temporal slice"}
	}
	for _, r := range slice[1:] {
		if err := utils.SameGrid(slice[0], r); err != nil {
			return err
		}
	}
	return nil
}

// gatherFinite appends the finite samples of pixel i across the
// temporal axis to buf and returns it.
func gatherFinite(slice []*utils.Float32Raster, i int, buf []float64) []float64 {
	buf = buf[:0]
	for _, r := range slice {
		v := float64(r.Data[i])
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			buf = append(buf, v)
		}
	}
	return buf
}

// CoefficientOfVariation computes stddev/mean per pixel across the
// temporal axis, ignoring non-finite samples. The standard deviation
// is the population one, matching the dispersion of the observed
// samples rather than an estimate for a larger population. Pixels
// with no finite sample come out NaN; a zero mean yields the IEEE
// quotient (NaN or Inf) instead of an error.
func CoefficientOfVariation(slice []*utils.Float32Raster) (*utils.Float32Raster, error) {
	if err := validateSlice(slice); err != nil {
		return nil, err
	}

	out := utils.NewFloat32Raster(slice[0], slice[0].NameSpace)
	buf := make([]float64, 0, len(slice))
	for i := range out.Data {
		buf = gatherFinite(slice, i, buf)
		if len(buf) == 0 {
			out.Data[i] = float32(math.NaN())
			continue
		}
		mean := stat.Mean(buf, nil)
		sd := stat.PopStdDev(buf, nil)
		out.Data[i] = float32(sd / mean)
	}
	return out, nil
}

// quantileSorted returns the q quantile of the sorted samples using
// linear interpolation between order statistics.
func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := q * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Quantiles computes one raster per requested quantile, per pixel
// across the temporal axis and ignoring non-finite samples. The
// result is keyed by quantile value, so the order of quantiles is
// irrelevant. Pixels with no finite sample come out NaN.
func Quantiles(slice []*utils.Float32Raster, quantiles []float64) (map[float64]*utils.Float32Raster, error) {
	if err := validateSlice(slice); err != nil {
		return nil, err
	}

	out := make(map[float64]*utils.Float32Raster, len(quantiles))
	for _, q := range quantiles {
		out[q] = utils.NewFloat32Raster(slice[0], slice[0].NameSpace)
	}

	buf := make([]float64, 0, len(slice))
	nPixels := slice[0].Height * slice[0].Width
	for i := 0; i < nPixels; i++ {
		buf = gatherFinite(slice, i, buf)
		if len(buf) == 0 {
			for _, q := range quantiles {
				out[q].Data[i] = float32(math.NaN())
			}
			continue
		}
		sort.Float64s(buf)
		for _, q := range quantiles {
			out[q].Data[i] = float32(quantileSorted(buf, q))
		}
	}
	return out, nil
}
