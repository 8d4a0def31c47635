package domain

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	earthRadiusMeters = 6371010.0
	pointBufferMeters = 1000.0
)

// Region is a geographic rectangle in degrees. All remote analysis is
// bounded-region only; arbitrary geometries degrade to their bounding box.
type Region struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// DefaultRegion is the fixed Corrientes analysis rectangle.
func DefaultRegion() Region {
	return Region{MinLon: -59.8, MinLat: -30.7, MaxLon: -55.5, MaxLat: -27.1}
}

// FIRMSBoundingBox is the hotspot query area in FIRMS bbox string order
// (west,south,east,north).
const FIRMSBoundingBox = "-60,-31,-57,-26"

// BoundingBox renders the region in FIRMS/GEE bbox order.
func (r Region) BoundingBox() string {
	return fmt.Sprintf("%g,%g,%g,%g", r.MinLon, r.MinLat, r.MaxLon, r.MaxLat)
}

// geoJSON is the subset of GeoJSON accepted as an area of interest.
type geoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// RegionFromGeoJSON converts a GeoJSON geometry to an analysis region.
// Points are expanded to a 1 km buffer; polygons (and anything else with a
// polygon coordinate shape) degrade to their bounding box. Malformed input
// is a validation error.
func RegionFromGeoJSON(data []byte) (Region, error) {
	var g geoJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return Region{}, Validationf("geometría inválida: %v", err)
	}

	switch g.Type {
	case "Point":
		var coords []float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) != 2 {
			return Region{}, Validationf("coordenadas de punto inválidas")
		}
		return bufferPoint(coords[1], coords[0]), nil
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) < 3 {
			return Region{}, Validationf("coordenadas de polígono inválidas")
		}
		return boundingBox(rings[0])
	default:
		return Region{}, Validationf("tipo de geometría no soportado: %q (usar Point o Polygon)", g.Type)
	}
}

// bufferPoint expands a point to the bounding rectangle of a 1 km cap.
func bufferPoint(lat, lon float64) Region {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	angle := s1.Angle(pointBufferMeters / earthRadiusMeters)
	rect := s2.CapFromCenterAngle(center, angle).RectBound()
	return regionFromRect(rect)
}

// boundingBox reduces a polygon ring to its bounding rectangle.
func boundingBox(ring [][]float64) (Region, error) {
	rect := s2.EmptyRect()
	for _, coord := range ring {
		if len(coord) != 2 {
			return Region{}, Validationf("coordenadas de polígono inválidas")
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(coord[1], coord[0]))
	}
	return regionFromRect(rect), nil
}

func regionFromRect(rect s2.Rect) Region {
	return Region{
		MinLon: rect.Lo().Lng.Degrees(),
		MinLat: rect.Lo().Lat.Degrees(),
		MaxLon: rect.Hi().Lng.Degrees(),
		MaxLat: rect.Hi().Lat.Degrees(),
	}
}
