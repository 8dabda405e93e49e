package utils

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	geo "github.com/nci/geometry"
)

// LoadAOI reads a GeoJSON document holding the area of interest and
// returns its geometry as WKT. Both a bare Feature and a
// FeatureCollection are accepted; for a collection the first feature
// is used. Only polygonal geometries make sense as a sampling mask.
func LoadAOI(path string) (string, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("Error while reading AOI file: %s. Error: %v", path, err)
	}

	var geom geo.Geometry

	var featCol geo.FeatureCollection
	if err := json.Unmarshal(raw, &featCol); err == nil && len(featCol.Features) > 0 {
		geom = featCol.Features[0].Geometry
	} else {
		var feat geo.Feature
		if err := json.Unmarshal(raw, &feat); err != nil {
			return "", fmt.Errorf("Problem unmarshalling AOI geometry from %s: %v", path, err)
		}
		geom = feat.Geometry
	}

	switch geom.(type) {
	case *geo.Polygon, *geo.MultiPolygon:
	default:
		return "", fmt.Errorf("AOI geometry in %s is not a Polygon or MultiPolygon", path)
	}

	return geom.MarshalWKT(), nil
}
