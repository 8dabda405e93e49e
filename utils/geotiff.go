package utils

import (
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerOnce sync.Once

func registerDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// ReadFloat32 loads band 1 of a GeoTIFF as a Float32Raster. Pixels
// equal to the dataset nodata value are normalised to NaN so the
// composite engines only ever deal with one missing value convention.
func ReadFloat32(path string) (*Float32Raster, error) {
	registerDrivers()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error while opening raster %s: %v", path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	band := bands[0]
	structure := band.Structure()

	out := &Float32Raster{
		Data:   make([]float32, structure.SizeX*structure.SizeY),
		Width:  structure.SizeX,
		Height: structure.SizeY,
		NoData: math.NaN(),
		Proj:   ds.Projection(),
	}
	if err := band.Read(0, 0, out.Data, structure.SizeX, structure.SizeY); err != nil {
		return nil, fmt.Errorf("error while reading raster %s: %v", path, err)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("raster %s has no geotransform: %v", path, err)
	}
	out.GeoTransform = gt

	if nodata, ok := band.NoData(); ok && !math.IsNaN(nodata) {
		nd := float32(nodata)
		for i, v := range out.Data {
			if v == nd {
				out.Data[i] = float32(math.NaN())
			}
		}
	}
	return out, nil
}

// ReadInt32 loads band 1 of a categorical GeoTIFF. The nodata value
// is carried verbatim so callers can exclude the sentinel class.
func ReadInt32(path string) (*Int32Raster, error) {
	registerDrivers()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error while opening raster %s: %v", path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	band := bands[0]
	structure := band.Structure()

	out := &Int32Raster{
		Data:   make([]int32, structure.SizeX*structure.SizeY),
		Width:  structure.SizeX,
		Height: structure.SizeY,
		NoData: -1,
		Proj:   ds.Projection(),
	}
	if err := band.Read(0, 0, out.Data, structure.SizeX, structure.SizeY); err != nil {
		return nil, fmt.Errorf("error while reading raster %s: %v", path, err)
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("raster %s has no geotransform: %v", path, err)
	}
	out.GeoTransform = gt

	if nodata, ok := band.NoData(); ok {
		out.NoData = nodata
	}
	return out, nil
}

// WriteFloat32 persists a computed raster as an LZW compressed
// float32 GeoTIFF with NaN nodata.
func WriteFloat32(path string, r *Float32Raster) error {
	registerDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Float32, r.Width, r.Height,
		godal.CreationOption("COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("error while creating raster %s: %v", path, err)
	}
	if err := ds.SetGeoTransform(r.GeoTransform); err != nil {
		ds.Close()
		return err
	}
	if len(r.Proj) > 0 {
		if err := ds.SetProjection(r.Proj); err != nil {
			ds.Close()
			return err
		}
	}
	band := ds.Bands()[0]
	if err := band.SetNoData(math.NaN()); err != nil {
		ds.Close()
		return err
	}
	if err := band.Write(0, 0, r.Data, r.Width, r.Height); err != nil {
		ds.Close()
		return err
	}
	return ds.Close()
}

// WriteInt32 persists a categorical raster as an LZW compressed
// int32 GeoTIFF.
func WriteInt32(path string, r *Int32Raster) error {
	registerDrivers()

	ds, err := godal.Create(godal.GTiff, path, 1, godal.Int32, r.Width, r.Height,
		godal.CreationOption("COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("error while creating raster %s: %v", path, err)
	}
	if err := ds.SetGeoTransform(r.GeoTransform); err != nil {
		ds.Close()
		return err
	}
	if len(r.Proj) > 0 {
		if err := ds.SetProjection(r.Proj); err != nil {
			ds.Close()
			return err
		}
	}
	band := ds.Bands()[0]
	if err := band.SetNoData(r.NoData); err != nil {
		ds.Close()
		return err
	}
	if err := band.Write(0, 0, r.Data, r.Width, r.Height); err != nil {
		ds.Close()
		return err
	}
	return ds.Close()
}

// RasterizeMask burns a WKT geometry onto the grid of ref and
// returns one flag per pixel, true inside the geometry. Used to
// restrict the samplers to an area of interest.
func RasterizeMask(wkt string, ref Raster) ([]bool, error) {
	registerDrivers()

	height, width := ref.Shape()
	gt, proj := geoRef(ref)

	ds, err := godal.Create(godal.Memory, "", 1, godal.Byte, width, height)
	if err != nil {
		return nil, fmt.Errorf("error while creating mask dataset: %v", err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(gt); err != nil {
		return nil, err
	}
	if len(proj) > 0 {
		if err := ds.SetProjection(proj); err != nil {
			return nil, err
		}
	}

	var sr *godal.SpatialRef
	if len(proj) > 0 {
		sr, err = godal.NewSpatialRefFromWKT(proj)
		if err != nil {
			return nil, fmt.Errorf("error while parsing raster projection: %v", err)
		}
		defer sr.Close()
	}

	geom, err := godal.NewGeometryFromWKT(wkt, sr)
	if err != nil {
		return nil, fmt.Errorf("error while parsing geometry: %v", err)
	}
	defer geom.Close()

	if err := ds.RasterizeGeometry(geom, godal.Values(1), godal.AllTouched()); err != nil {
		return nil, fmt.Errorf("error while rasterizing geometry: %v", err)
	}

	buf := make([]byte, width*height)
	if err := ds.Bands()[0].Read(0, 0, buf, width, height); err != nil {
		return nil, err
	}
	mask := make([]bool, len(buf))
	for i, v := range buf {
		mask[i] = v != 0
	}
	return mask, nil
}
