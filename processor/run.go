package processor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nci/terracomp/metrics"
	"github.com/nci/terracomp/utils"
)

// BuildComposites runs the full temporal composite pass: for every
// band, load its stack once, then for every date range generated for
// that band select the observation window and accumulate the
// coefficient of variation and quantile composites into one table.
// Empty windows are skipped and counted, never materialised as empty
// composites.
func BuildComposites(loader *StackLoader, bands []string, ranges []utils.DateRange,
	quantiles []float64, info *metrics.CompositeInfo) (*CompositeTable, error) {

	table := NewCompositeTable()
	info.Bands = len(bands)

	sortedQuantiles := make([]float64, len(quantiles))
	copy(sortedQuantiles, quantiles)
	sort.Float64s(sortedQuantiles)

	for _, band := range bands {
		stack, err := loader.Load(band)
		if err != nil {
			return nil, err
		}
		info.FilesRead += len(stack.Obs)
		dates := stack.Dates()

		for _, dr := range ranges {
			if !dr.AppliesTo(band) {
				continue
			}

			lo, hi, err := SelectWindow(dates, dr.Start, dr.End)
			if errors.Is(err, utils.ErrEmptyWindow) {
				info.WindowsSkipped++
				continue
			}
			info.WindowsSelected++

			period := fmt.Sprintf("%02d", int(stack.Obs[lo].Date.Month()))
			slice := stack.Slice(lo, hi)

			cv, err := CoefficientOfVariation(slice)
			if err != nil {
				return nil, fmt.Errorf("cv composite for %s: %v", dr.Name, err)
			}
			table.Add(band, period, "cv", cv)

			qrs, err := Quantiles(slice, sortedQuantiles)
			if err != nil {
				return nil, fmt.Errorf("quantile composites for %s: %v", dr.Name, err)
			}
			for _, q := range sortedQuantiles {
				table.Add(band, period, QuantileLabel(q), qrs[q])
			}
		}
	}
	return table, nil
}

// DeriveIndices computes the spectral indices for every period and
// quantile statistic accumulated in the table, writing one raster
// per index. roles maps the spectral roles blue, red, nir, swir1 and
// swir2 to band identifiers. Periods where any of the five bands is
// missing are skipped.
func DeriveIndices(table *CompositeTable, roles map[string]string,
	expressions []*BandExpression, outDir string, info *metrics.CompositeInfo) error {

	required := []string{"blue", "red", "nir", "swir1", "swir2"}
	for _, role := range required {
		if len(roles[role]) == 0 {
			return fmt.Errorf("spectral index band role %s is not configured", role)
		}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	for _, key := range table.Keys() {
		if key.Band != roles["blue"] {
			continue
		}
		for _, entry := range table.Entries(key) {
			// the dispersion composite is not a reflectance, only
			// quantile statistics feed the index formulas
			if !strings.HasPrefix(entry.Statistic, "p") {
				continue
			}

			in := IndexInputs{
				Blue:  entry.Raster,
				Red:   table.Raster(roles["red"], key.Period, entry.Statistic),
				NIR:   table.Raster(roles["nir"], key.Period, entry.Statistic),
				SWIR1: table.Raster(roles["swir1"], key.Period, entry.Statistic),
				SWIR2: table.Raster(roles["swir2"], key.Period, entry.Statistic),
			}
			if in.Red == nil || in.NIR == nil || in.SWIR1 == nil || in.SWIR2 == nil {
				continue
			}

			indices, err := ComputeIndices(in)
			if err != nil {
				return err
			}
			for _, expr := range expressions {
				r, err := expr.Evaluate(in)
				if err != nil {
					return err
				}
				indices[expr.Name] = r
			}

			names := make([]string, 0, len(indices))
			for name := range indices {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				path := filepath.Join(outDir, fmt.Sprintf("%s_%s_%s.tif", key.Period, name, entry.Statistic))
				if err := utils.WriteFloat32(path, indices[name]); err != nil {
					return err
				}
				info.IndicesWritten++
			}
		}
	}
	return nil
}
