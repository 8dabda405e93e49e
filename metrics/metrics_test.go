package metrics

import (
	"encoding/json"
	"io/ioutil"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInfoToJSON(t *testing.T) {
	info := &RunInfo{
		ReqTime:    "2022-06-01T00:00:00Z",
		ConfigFile: "config.json",
		Composite:  &CompositeInfo{Bands: 2, WindowsSelected: 12},
		Sampling:   &SamplingInfo{Strategy: "clustered", Points: 1000},
	}

	out, err := info.ToJSON()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n"))

	var decoded RunInfo
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, info.ConfigFile, decoded.ConfigFile)
	assert.Equal(t, 12, decoded.Composite.WindowsSelected)
	assert.Equal(t, "clustered", decoded.Sampling.Strategy)
}

func TestCollector(t *testing.T) {
	var logged []*RunInfo
	collector := NewCollector(loggerFunc(func(info *RunInfo) {
		logged = append(logged, info)
	}))

	collector.Info.Composite.Bands = 3
	collector.Log()
	require.Len(t, logged, 1)
	assert.Equal(t, 3, logged[0].Composite.Bands)
	assert.NotEmpty(t, logged[0].ReqTime)
}

type loggerFunc func(*RunInfo)

func (f loggerFunc) Log(info *RunInfo) { f(info) }

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	logger := NewFileLogger(dir, 0)

	logger.Log(&RunInfo{ConfigFile: "a.json", Composite: &CompositeInfo{}, Sampling: &SamplingInfo{}})
	logger.Log(&RunInfo{ConfigFile: "b.json", Composite: &CompositeInfo{}, Sampling: &SamplingInfo{}})
	logger.Close()

	raw, err := ioutil.ReadFile(path.Join(dir, "runs.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)

	var first RunInfo
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "a.json", first.ConfigFile)
}
