package geospatial

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// ValidateGeoJSON parses a GeoJSON string holding either a Feature or a
// bare geometry and returns the geometry
func ValidateGeoJSON(geojsonStr string) (orb.Geometry, error) {
	if feature, err := geojson.UnmarshalFeature([]byte(geojsonStr)); err == nil {
		if feature.Geometry == nil {
			return nil, errors.New("invalid GeoJSON: feature has no geometry")
		}
		return feature.Geometry, nil
	}

	geometry, err := geojson.UnmarshalGeometry([]byte(geojsonStr))
	if err != nil {
		return nil, err
	}
	return geometry.Geometry(), nil
}

// CalculateArea calculates the geodesic area in square meters
func CalculateArea(geometry orb.Geometry) float64 {
	return geo.Area(geometry)
}

// ConvertToHectares converts square meters to hectares
func ConvertToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}
