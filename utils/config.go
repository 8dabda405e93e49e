package utils

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// string used to parse the dates embedded in observation file names
const DateFormat = "20060102"

// string used to parse dates in config and date range files
const ISODateFormat = "2006-01-02"

// CompositeConfig drives the temporal composite run: where the
// dated band observations live, which bands participate and how the
// year is carved into aggregation periods.
type CompositeConfig struct {
	BaseDir         string    `json:"base_dir"`
	OutputDir       string    `json:"output_dir"`
	Bands           []string  `json:"bands"`
	IntervalType    string    `json:"interval_type"`
	Year            int       `json:"year"`
	CustomIntervals [][2]int  `json:"custom_intervals"`
	Quantiles       []float64 `json:"quantiles"`
	DateRangeFile   string    `json:"date_range_file"`
}

// IndicesConfig maps the spectral roles used by the index formulas
// to the band identifiers of the product being processed, e.g.
// blue -> B02 for HLS. Expressions holds optional user defined
// band arithmetic evaluated next to the builtin indices.
type IndicesConfig struct {
	Enabled     bool              `json:"enabled"`
	BandRoles   map[string]string `json:"band_roles"`
	Expressions map[string]string `json:"expressions"`
}

// SamplingConfig drives point sample generation from a categorical
// raster. Reclass remaps the raster to training class ids first,
// after a FilterSize median filter pass. Seed makes the random draws
// reproducible; zero seeds from the wall clock.
type SamplingConfig struct {
	Strategy           string  `json:"strategy"`
	CategoricalPath    string  `json:"categorical_path"`
	OutputPath         string  `json:"output_path"`
	SamplePercent      float64 `json:"sample_percent"`
	TotalSamples       int     `json:"total_samples"`
	MinSamplesPerClass int     `json:"min_samples_per_class"`
	MinPixels          int     `json:"min_pixels"`
	BufferPixels       int     `json:"buffer_pixels"`
	BufferGround       float64 `json:"buffer_ground"`
	Eps                float64 `json:"eps"`
	MinSamples         int     `json:"min_samples"`
	MinClusterSize     int     `json:"min_cluster_size"`
	MinDensity         float64 `json:"min_density"`
	NoClass            int32   `json:"no_class"`
	Reclass            bool    `json:"reclass"`
	FilterSize         int     `json:"filter_size"`
	Seed               int64   `json:"seed"`
	AOIPath            string  `json:"aoi_path"`
}

// Config is the struct representing the configuration of a
// composite and sampling run.
type Config struct {
	Composite CompositeConfig `json:"composite"`
	Indices   IndicesConfig   `json:"spectral_indices"`
	Sampling  SamplingConfig  `json:"sampling"`
}

var DefaultQuantiles = []float64{0.10, 0.25, 0.50, 0.75, 0.90}

const DefaultBufferPixels = 10

var samplingStrategies = map[string]bool{
	"":           true,
	"clustered":  true,
	"gridded":    true,
	"random":     true,
	"stratified": true,
}

// LoadConfigFile unmarshalls the config.json document returning an
// instance of a Config variable containing all the values.
func (config *Config) LoadConfigFile(configFile string) error {
	*config = Config{}
	cfg, err := ioutil.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("Error while reading config file: %s. Error: %v", configFile, err)
	}

	err = json.Unmarshal(cfg, config)
	if err != nil {
		return fmt.Errorf("Error at JSON parsing config document: %s. Error: %v", configFile, err)
	}

	if len(config.Composite.Quantiles) == 0 {
		config.Composite.Quantiles = DefaultQuantiles
	}
	if len(config.Composite.IntervalType) == 0 {
		config.Composite.IntervalType = "bi_monthly"
	}
	if config.Composite.Year == 0 {
		config.Composite.Year = time.Now().UTC().Year()
	}
	if config.Sampling.BufferPixels == 0 {
		config.Sampling.BufferPixels = DefaultBufferPixels
	}
	if !samplingStrategies[config.Sampling.Strategy] {
		return fmt.Errorf("Unknown sampling strategy: %s", config.Sampling.Strategy)
	}
	return nil
}

// DateRange names a closed date interval. The band identifier the
// range applies to is embedded in the name, e.g. B04_january_february.
type DateRange struct {
	Name  string
	Start time.Time
	End   time.Time
}

// AppliesTo reports whether the range was generated for the given band.
func (dr *DateRange) AppliesTo(band string) bool {
	return strings.Contains(dr.Name, band)
}

var monthNames = [13]string{"", "January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December"}

func lastDay(year, month int) time.Time {
	// day zero of the next month normalises to the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

func firstDay(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// GenerateDateRanges builds the per band aggregation periods for one
// year. Supported interval types are bi_monthly, quarterly, semester,
// custom and annual. Custom intervals are pairs of start and end
// months and are required when intervalType is custom.
func GenerateDateRanges(bands []string, intervalType string, year int, customIntervals [][2]int) ([]DateRange, error) {
	var ranges []DateRange

	for _, band := range bands {
		switch intervalType {
		case "bi_monthly":
			for month := 1; month <= 12; month += 2 {
				next := month + 1
				if next > 12 {
					next = 12
				}
				name := fmt.Sprintf("%s_%s_%s", band,
					strings.ToLower(monthNames[month]), strings.ToLower(monthNames[next]))
				ranges = append(ranges, DateRange{name, firstDay(year, month), lastDay(year, next)})
			}
		case "quarterly":
			quarters := [4][2]int{{1, 3}, {4, 6}, {7, 9}, {10, 12}}
			for i, q := range quarters {
				name := fmt.Sprintf("%s_Q%d_%s_%s", band, i+1, monthNames[q[0]], monthNames[q[1]])
				ranges = append(ranges, DateRange{name, firstDay(year, q[0]), lastDay(year, q[1])})
			}
		case "semester":
			ranges = append(ranges,
				DateRange{band + "_semester1", firstDay(year, 1), lastDay(year, 6)},
				DateRange{band + "_semester2", firstDay(year, 7), lastDay(year, 12)})
		case "custom":
			if len(customIntervals) == 0 {
				return nil, fmt.Errorf("custom interval type requires custom_intervals")
			}
			for _, iv := range customIntervals {
				if iv[0] < 1 || iv[0] > 12 || iv[1] < 1 || iv[1] > 12 {
					return nil, fmt.Errorf("invalid custom interval: %v", iv)
				}
				name := fmt.Sprintf("%s_%s_%s", band,
					strings.ToLower(monthNames[iv[0]]), strings.ToLower(monthNames[iv[1]]))
				ranges = append(ranges, DateRange{name, firstDay(year, iv[0]), lastDay(year, iv[1])})
			}
		case "annual":
			ranges = append(ranges, DateRange{band + "_annual", firstDay(year, 1), lastDay(year, 12)})
		default:
			return nil, fmt.Errorf("unknown interval type: %s", intervalType)
		}
	}
	return ranges, nil
}

type yamlDateRange struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type yamlDateRangeFile struct {
	Ranges []yamlDateRange `yaml:"ranges"`
}

// LoadDateRanges reads an externally supplied date range table from
// a YAML document. Dates use the YYYY-MM-DD form.
func LoadDateRanges(path string) ([]DateRange, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Error while reading date range file: %s. Error: %v", path, err)
	}

	var doc yamlDateRangeFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("Error at YAML parsing date range document: %s. Error: %v", path, err)
	}

	ranges := make([]DateRange, len(doc.Ranges))
	for i, r := range doc.Ranges {
		start, err := time.Parse(ISODateFormat, r.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %s in range %s: %v", r.Start, r.Name, err)
		}
		end, err := time.Parse(ISODateFormat, r.End)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %s in range %s: %v", r.End, r.Name, err)
		}
		ranges[i] = DateRange{r.Name, start, end}
	}
	return ranges, nil
}
