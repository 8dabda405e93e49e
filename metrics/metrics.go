package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

// CompositeInfo summarises the temporal composite stage of a run.
type CompositeInfo struct {
	Duration        time.Duration `json:"duration"`
	Bands           int           `json:"bands"`
	FilesRead       int           `json:"files_read"`
	WindowsSelected int           `json:"windows_selected"`
	WindowsSkipped  int           `json:"windows_skipped"`
	RastersWritten  int           `json:"rasters_written"`
	IndicesWritten  int           `json:"indices_written"`
}

// SamplingInfo summarises the point sampling stage of a run.
type SamplingInfo struct {
	Duration       time.Duration `json:"duration"`
	Strategy       string        `json:"strategy"`
	Classes        int           `json:"classes"`
	ClassesSkipped int           `json:"classes_skipped"`
	Points         int           `json:"points"`
}

// RunInfo is the JSON document describing one batch invocation,
// emitted through a Logger when the run finishes.
type RunInfo struct {
	ReqTime     string         `json:"req_time"`
	ReqDuration time.Duration  `json:"req_duration"`
	ConfigFile  string         `json:"config_file"`
	Composite   *CompositeInfo `json:"composite"`
	Sampling    *SamplingInfo  `json:"sampling"`
}

type Collector struct {
	Info   *RunInfo
	logger Logger
}

func NewCollector(logger Logger) *Collector {
	return &Collector{
		Info: &RunInfo{
			ReqTime:   time.Now().UTC().Format(time.RFC3339),
			Composite: &CompositeInfo{},
			Sampling:  &SamplingInfo{},
		},
		logger: logger,
	}
}

func (c *Collector) Log() {
	if c.logger != nil {
		c.logger.Log(c.Info)
	}
}

func (i *RunInfo) ToJSON() (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(i)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
