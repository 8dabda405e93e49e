package processor

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nci/terracomp/utils"
)

// TemporalObservation is one dated acquisition of a single band.
type TemporalObservation struct {
	Date   time.Time
	Path   string
	Raster *utils.Float32Raster
}

// Stack is the ordered sequence of observations of one band, sorted
// by acquisition date ascending. Window selection relies on that
// ordering and never sorts again.
type Stack struct {
	Band string
	Obs  []TemporalObservation
}

// Dates returns the acquisition dates in stack order.
func (s *Stack) Dates() []time.Time {
	dates := make([]time.Time, len(s.Obs))
	for i, o := range s.Obs {
		dates[i] = o.Date
	}
	return dates
}

// Slice returns the rasters of the observations in [lo, hi].
func (s *Stack) Slice(lo, hi int) []*utils.Float32Raster {
	out := make([]*utils.Float32Raster, 0, hi-lo+1)
	for _, o := range s.Obs[lo : hi+1] {
		out = append(out, o.Raster)
	}
	return out
}

// StackLoader walks a directory tree for the single band GeoTIFFs of
// one band identifier. The acquisition date is the leading
// YYYYMMDD token of the file name, the band identifier its trailing
// token, e.g. 20220131_L30_B04.tif.
type StackLoader struct {
	BaseDir string
	Verbose bool
	Info    *log.Logger
}

func NewStackLoader(baseDir string, verbose bool, info *log.Logger) *StackLoader {
	return &StackLoader{BaseDir: baseDir, Verbose: verbose, Info: info}
}

func (sl *StackLoader) findBandFiles(band string) ([]string, error) {
	var paths []string
	suffix := fmt.Sprintf("_%s.tif", band)
	err := filepath.Walk(sl.BaseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), suffix) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// Load builds the temporal stack of one band. All observations must
// be co-registered with the first one; a mismatch aborts the load.
func (sl *StackLoader) Load(band string) (*Stack, error) {
	paths, err := sl.findBandFiles(band)
	if err != nil {
		return nil, fmt.Errorf("error while scanning %s for band %s: %v", sl.BaseDir, band, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no observations found for band %s under %s", band, sl.BaseDir)
	}

	stack := &Stack{Band: band, Obs: make([]TemporalObservation, 0, len(paths))}
	for _, path := range paths {
		dateToken := strings.SplitN(filepath.Base(path), "_", 2)[0]
		date, err := time.Parse(utils.DateFormat, dateToken)
		if err != nil {
			return nil, fmt.Errorf("cannot parse acquisition date from file name %s: %v", filepath.Base(path), err)
		}

		raster, err := utils.ReadFloat32(path)
		if err != nil {
			return nil, err
		}
		raster.NameSpace = band

		if len(stack.Obs) > 0 {
			if err := utils.SameGrid(stack.Obs[0].Raster, raster); err != nil {
				return nil, fmt.Errorf("observation %s: %v", path, err)
			}
		}

		if sl.Verbose && sl.Info != nil {
			sl.Info.Printf("loaded %s (%s)\n", path, date.Format(utils.ISODateFormat))
		}
		stack.Obs = append(stack.Obs, TemporalObservation{Date: date, Path: path, Raster: raster})
	}

	sort.Slice(stack.Obs, func(i, j int) bool {
		return stack.Obs[i].Date.Before(stack.Obs[j].Date)
	})
	return stack, nil
}
