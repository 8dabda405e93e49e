package processor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nci/terracomp/utils"
)

// CompositeKey identifies the composite outputs of one band over one
// aggregation period. The period label is the zero padded month of
// the first observation inside the window.
type CompositeKey struct {
	Band   string
	Period string
}

// CompositeEntry is one statistic raster of a composite, where the
// statistic is "cv" or a quantile label such as "p25".
type CompositeEntry struct {
	Statistic string
	Raster    *utils.Float32Raster
}

// CompositeTable accumulates composite results keyed by band and
// period, preserving insertion order, and hands them to a single
// export step. It replaces ad hoc growable maps shared across loop
// iterations with one explicit typed table.
type CompositeTable struct {
	keys    []CompositeKey
	entries map[CompositeKey][]CompositeEntry
}

func NewCompositeTable() *CompositeTable {
	return &CompositeTable{entries: make(map[CompositeKey][]CompositeEntry)}
}

// Add appends one statistic raster for a band and period.
func (t *CompositeTable) Add(band, period, statistic string, raster *utils.Float32Raster) {
	key := CompositeKey{Band: band, Period: period}
	if _, ok := t.entries[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = append(t.entries[key], CompositeEntry{Statistic: statistic, Raster: raster})
}

// Keys returns the accumulated band and period pairs in insertion order.
func (t *CompositeTable) Keys() []CompositeKey {
	return t.keys
}

// Entries returns the statistic rasters of one band and period pair.
func (t *CompositeTable) Entries(key CompositeKey) []CompositeEntry {
	return t.entries[key]
}

// Raster looks up a single statistic raster, nil when absent.
func (t *CompositeTable) Raster(band, period, statistic string) *utils.Float32Raster {
	for _, e := range t.entries[CompositeKey{Band: band, Period: period}] {
		if e.Statistic == statistic {
			return e.Raster
		}
	}
	return nil
}

// Len returns the number of accumulated statistic rasters.
func (t *CompositeTable) Len() int {
	n := 0
	for _, entries := range t.entries {
		n += len(entries)
	}
	return n
}

// Export writes every accumulated raster under dir following the
// <period>_<band>_<statistic>.tif convention.
func (t *CompositeTable) Export(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, key := range t.keys {
		for _, entry := range t.entries[key] {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.tif", key.Period, key.Band, entry.Statistic))
			if err := utils.WriteFloat32(path, entry.Raster); err != nil {
				return err
			}
		}
	}
	return nil
}

// QuantileLabel formats a quantile value as a statistic label,
// e.g. 0.25 -> p25.
func QuantileLabel(q float64) string {
	return fmt.Sprintf("p%d", int(q*100+0.5))
}
