package main

/* terracomp is a batch tool turning a multi-date stack of satellite
   reflectance bands into per-pixel temporal summary rasters and
   spatially aware point samples for land cover classification.
   One invocation can run two stages. The composite stage selects
   the observations of each band falling inside configured date
   ranges and writes coefficient of variation and quantile
   composites, then derives spectral indices from the quantile
   composites. The sampling stage reads a categorical raster,
   apportions per class sample quotas and draws point samples with
   one of the clustered, gridded, random or stratified strategies.
   Configuration of a run is specified in a config.json document. */

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nci/terracomp/metrics"
	proc "github.com/nci/terracomp/processor"
	"github.com/nci/terracomp/sampler"
	"github.com/nci/terracomp/utils"
)

var (
	configFile = flag.String("conf", "config.json", "Run configuration file.")
	logDir     = flag.String("log_dir", "", "Run metrics log directory.")
	checkConf  = flag.Bool("check_conf", false, "Validate the config file and exit.")
	verbose    = flag.Bool("v", false, "Verbose mode for more outputs.")
)

var (
	Error *log.Logger
	Info  *log.Logger
)

func init() {
	Error = log.New(os.Stderr, "TERRACOMP: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(os.Stdout, "TERRACOMP: ", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	flag.Parse()

	config := &utils.Config{}
	if err := config.LoadConfigFile(*configFile); err != nil {
		Error.Fatalf("%v\n", err)
	}
	if *checkConf {
		Info.Printf("config file %s is valid\n", *configFile)
		return
	}

	var metricsLogger metrics.Logger
	var fileLogger *metrics.FileLogger
	if len(*logDir) > 0 {
		fileLogger = metrics.NewFileLogger(*logDir, 0)
		metricsLogger = fileLogger
	} else {
		metricsLogger = metrics.NewStdoutLogger()
	}

	collector := metrics.NewCollector(metricsLogger)
	collector.Info.ConfigFile = *configFile
	t0 := time.Now()

	if len(config.Composite.Bands) > 0 {
		if err := runComposites(config, collector); err != nil {
			Error.Fatalf("composite stage failed: %v\n", err)
		}
	}

	if len(config.Sampling.Strategy) > 0 {
		if err := runSampling(config, collector); err != nil {
			Error.Fatalf("sampling stage failed: %v\n", err)
		}
	}

	collector.Info.ReqDuration = time.Since(t0)
	collector.Log()
	if fileLogger != nil {
		fileLogger.Close()
	}
}

func runComposites(config *utils.Config, collector *metrics.Collector) error {
	t0 := time.Now()
	cfg := &config.Composite
	info := collector.Info.Composite

	var ranges []utils.DateRange
	var err error
	if len(cfg.DateRangeFile) > 0 {
		ranges, err = utils.LoadDateRanges(cfg.DateRangeFile)
	} else {
		ranges, err = utils.GenerateDateRanges(cfg.Bands, cfg.IntervalType, cfg.Year, cfg.CustomIntervals)
	}
	if err != nil {
		return err
	}

	loader := proc.NewStackLoader(cfg.BaseDir, *verbose, Info)
	table, err := proc.BuildComposites(loader, cfg.Bands, ranges, cfg.Quantiles, info)
	if err != nil {
		return err
	}

	outDir := cfg.OutputDir
	if len(outDir) == 0 {
		outDir = filepath.Join(cfg.BaseDir, "temporal_composites")
	}
	if err := table.Export(outDir); err != nil {
		return err
	}
	info.RastersWritten = table.Len()
	Info.Printf("wrote %d composite rasters under %s\n", info.RastersWritten, outDir)

	if config.Indices.Enabled {
		var expressions []*proc.BandExpression
		names := make([]string, 0, len(config.Indices.Expressions))
		for name := range config.Indices.Expressions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			expr, err := proc.NewBandExpression(name, config.Indices.Expressions[name])
			if err != nil {
				return fmt.Errorf("band expression %s: %v", name, err)
			}
			expressions = append(expressions, expr)
		}

		indexDir := filepath.Join(outDir, "spectral_indices")
		if err := proc.DeriveIndices(table, config.Indices.BandRoles, expressions, indexDir, info); err != nil {
			return err
		}
		Info.Printf("wrote %d index rasters under %s\n", info.IndicesWritten, indexDir)
	}

	info.Duration = time.Since(t0)
	return nil
}

func runSampling(config *utils.Config, collector *metrics.Collector) error {
	t0 := time.Now()
	cfg := &config.Sampling
	info := collector.Info.Sampling
	info.Strategy = cfg.Strategy

	raster, err := utils.ReadInt32(cfg.CategoricalPath)
	if err != nil {
		return err
	}
	if cfg.NoClass != 0 {
		raster.NoData = float64(cfg.NoClass)
	}
	if cfg.Reclass {
		raster = proc.DefaultCroplandTable().Apply(raster, cfg.FilterSize)
	}

	populations, nPixels := sampler.CountClasses(raster)
	info.Classes = len(populations)

	total := cfg.TotalSamples
	if total == 0 && cfg.SamplePercent > 0 {
		total = sampler.TotalFromFraction(cfg.SamplePercent, nPixels)
	}

	classes := make([]int32, 0, len(populations))
	for class := range populations {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	popList := make([]int, len(classes))
	for i, class := range classes {
		popList[i] = populations[class]
	}
	allocation := sampler.Allocate(popList, total, cfg.MinSamplesPerClass)
	quotas := make(map[int32]int, len(classes))
	for i, class := range classes {
		quotas[class] = allocation[i]
	}

	var mask []bool
	if len(cfg.AOIPath) > 0 {
		wkt, err := utils.LoadAOI(cfg.AOIPath)
		if err != nil {
			return err
		}
		mask, err = utils.RasterizeMask(wkt, raster)
		if err != nil {
			return err
		}
	}

	var rnd *rand.Rand
	if cfg.Seed != 0 {
		rnd = rand.New(rand.NewSource(cfg.Seed))
	}

	var set *sampler.SampleSet
	switch cfg.Strategy {
	case "clustered":
		s := sampler.NewDensityClusterSampler(cfg.Eps, cfg.MinSamples, cfg.MinPixels,
			cfg.BufferPixels, cfg.MinClusterSize, cfg.MinDensity, rnd)
		var skipped []int32
		set, skipped = s.Sample(raster, quotas, mask)
		info.ClassesSkipped = len(skipped)
		for _, class := range skipped {
			Info.Printf("class %d has fewer than %d candidate pixels, skipped\n", class, cfg.MinPixels)
		}
	case "stratified":
		set = sampler.NewStratifiedSampler(cfg.BufferPixels, rnd).Sample(raster, quotas, mask)
	case "gridded":
		set = (&sampler.GridSampler{BufferPixels: cfg.BufferPixels}).Sample(raster, total)
	case "random":
		set = sampler.NewRandomSampler(cfg.BufferGround, rnd).Sample(raster, total)
	default:
		return fmt.Errorf("unknown sampling strategy: %s", cfg.Strategy)
	}

	if err := sampler.WriteGeoJSON(set, cfg.OutputPath); err != nil {
		return err
	}
	info.Points = len(set.Points)
	info.Duration = time.Since(t0)
	Info.Printf("wrote %d sample points to %s\n", info.Points, cfg.OutputPath)
	return nil
}
