package processor

import (
	"fmt"

	goeval "github.com/edisonguo/govaluate"

	"github.com/nci/terracomp/utils"
)

// The spectral index formulas are normalized differences of linear
// band combinations. Wherever a denominator is exactly zero the
// output pixel is zero rather than NaN, which keeps the index
// rasters free of synthetic nodata holes. NaN inputs still propagate
// through the arithmetic.

func checkAligned(rasters ...*utils.Float32Raster) error {
	for _, r := range rasters[1:] {
		if err := utils.SameGrid(rasters[0], r); err != nil {
			return err
		}
	}
	return nil
}

// normalizedDifference computes (a - b) / (a + b) pixel-wise with
// the zero denominator saturation policy.
func normalizedDifference(a, b *utils.Float32Raster, nameSpace string) (*utils.Float32Raster, error) {
	if err := checkAligned(a, b); err != nil {
		return nil, err
	}
	out := utils.NewFloat32Raster(a, nameSpace)
	for i := range out.Data {
		denom := a.Data[i] + b.Data[i]
		if denom != 0 {
			out.Data[i] = (a.Data[i] - b.Data[i]) / denom
		}
	}
	return out, nil
}

// EVI is the enhanced vegetation index,
// 2.5 * (NIR - Red) / (NIR + 6*Red - 7.5*Blue + 1).
func EVI(nir, red, blue *utils.Float32Raster) (*utils.Float32Raster, error) {
	if err := checkAligned(nir, red, blue); err != nil {
		return nil, err
	}
	out := utils.NewFloat32Raster(nir, "evi")
	for i := range out.Data {
		denom := nir.Data[i] + 6*red.Data[i] - 7.5*blue.Data[i] + 1
		if denom != 0 {
			out.Data[i] = 2.5 * (nir.Data[i] - red.Data[i]) / denom
		}
	}
	return out, nil
}

// NDBI is the normalized difference built-up index over SWIR1 and NIR.
func NDBI(swir1, nir *utils.Float32Raster) (*utils.Float32Raster, error) {
	return normalizedDifference(swir1, nir, "ndbi")
}

// NDWI is the normalized difference water index over NIR and SWIR1.
func NDWI(nir, swir1 *utils.Float32Raster) (*utils.Float32Raster, error) {
	return normalizedDifference(nir, swir1, "ndwi")
}

// NBR is the normalized burn ratio over NIR and SWIR2.
func NBR(nir, swir2 *utils.Float32Raster) (*utils.Float32Raster, error) {
	return normalizedDifference(nir, swir2, "nbr")
}

// NDTI is the normalized difference turbidity index over SWIR1 and SWIR2.
func NDTI(swir1, swir2 *utils.Float32Raster) (*utils.Float32Raster, error) {
	return normalizedDifference(swir1, swir2, "ndti")
}

// IndexInputs are the five aligned composite bands consumed by the
// builtin indices.
type IndexInputs struct {
	Blue  *utils.Float32Raster
	Red   *utils.Float32Raster
	NIR   *utils.Float32Raster
	SWIR1 *utils.Float32Raster
	SWIR2 *utils.Float32Raster
}

// ComputeIndices derives the five builtin spectral indices. Each
// index computes its own denominator mask independently.
func ComputeIndices(in IndexInputs) (map[string]*utils.Float32Raster, error) {
	evi, err := EVI(in.NIR, in.Red, in.Blue)
	if err != nil {
		return nil, err
	}
	ndbi, err := NDBI(in.SWIR1, in.NIR)
	if err != nil {
		return nil, err
	}
	ndwi, err := NDWI(in.NIR, in.SWIR1)
	if err != nil {
		return nil, err
	}
	nbr, err := NBR(in.NIR, in.SWIR2)
	if err != nil {
		return nil, err
	}
	ndti, err := NDTI(in.SWIR1, in.SWIR2)
	if err != nil {
		return nil, err
	}
	return map[string]*utils.Float32Raster{
		"evi": evi, "ndbi": ndbi, "ndwi": ndwi, "nbr": nbr, "ndti": ndti,
	}, nil
}

// BandVariables are the variable names a user defined band
// expression may reference.
var BandVariables = map[string]struct{}{
	"blue": {}, "red": {}, "nir": {}, "swir1": {}, "swir2": {},
}

// BandExpression is a user defined pixel-wise formula over the named
// band variables.
type BandExpression struct {
	Name string
	expr *goeval.EvaluableExpression
	vars []string
}

// NewBandExpression parses and validates an expression the way the
// builtin indices are defined: every variable must be one of the
// known band names.
func NewBandExpression(name, expression string) (*BandExpression, error) {
	expr, err := goeval.NewEvaluableExpression(expression)
	if err != nil {
		return nil, err
	}

	var vars []string
	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := BandVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are %v", varName, BandVariables)
			}
			vars = append(vars, varName)
		}
	}
	return &BandExpression{Name: name, expr: expr, vars: vars}, nil
}

// Evaluate applies the expression per pixel over the referenced
// bands. Unlike the builtin indices there is no saturation policy
// here: whatever the arithmetic produces is written out.
func (be *BandExpression) Evaluate(in IndexInputs) (*utils.Float32Raster, error) {
	bands := map[string]*utils.Float32Raster{
		"blue": in.Blue, "red": in.Red, "nir": in.NIR, "swir1": in.SWIR1, "swir2": in.SWIR2,
	}

	var ref *utils.Float32Raster
	for _, v := range be.vars {
		if bands[v] == nil {
			return nil, fmt.Errorf("expression %s references band %s which is not available", be.Name, v)
		}
		if ref == nil {
			ref = bands[v]
		} else if err := utils.SameGrid(ref, bands[v]); err != nil {
			return nil, err
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("expression %s references no bands", be.Name)
	}

	out := utils.NewFloat32Raster(ref, be.Name)
	params := make(map[string]interface{}, len(be.vars))
	for i := range out.Data {
		for _, v := range be.vars {
			params[v] = float64(bands[v].Data[i])
		}
		res, err := be.expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("expression %s failed at pixel %d: %v", be.Name, i, err)
		}
		val, ok := res.(float32)
		if !ok {
			return nil, fmt.Errorf("expression %s is not numeric", be.Name)
		}
		out.Data[i] = val
	}
	return out, nil
}
