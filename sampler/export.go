package sampler

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"
)

// WriteGeoJSON persists a sample set as a GeoJSON FeatureCollection
// of points carrying the class id in the value property. GeoJSON
// itself has no projection slot, so when the set carries a non
// trivial projection its WKT is written to a .prj sidecar next to
// the output, matching what downstream extraction tooling expects.
func WriteGeoJSON(set *SampleSet, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	features := make([]*geojson.Feature, len(set.Points))
	for i, p := range set.Points {
		point := geojson.NewPoint([]float64{p.X, p.Y})
		features[i] = geojson.NewFeature(point, nil, map[string]interface{}{"value": int(p.Class)})
	}
	collection := geojson.NewFeatureCollection(features)

	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("error while encoding sample set: %v", err)
	}
	if err := ioutil.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("error while writing sample set %s: %v", path, err)
	}

	if len(set.Proj) > 0 {
		prjPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
		if err := ioutil.WriteFile(prjPath, []byte(set.Proj), 0644); err != nil {
			return fmt.Errorf("error while writing projection sidecar %s: %v", prjPath, err)
		}
	}
	return nil
}
