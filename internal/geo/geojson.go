// Package geo handles geographic data structures and coordinate conversions.
package geo

// GeoJSONFeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type" yaml:"type"`
	Features []GeoJSONFeature `json:"features" yaml:"features"`
}

// GeoJSONFeature represents a single geographic feature with geometry and properties.
type GeoJSONFeature struct {
	Properties map[string]any  `json:"properties" yaml:"properties"`
	Type       string          `json:"type" yaml:"type"`
	ID         string          `json:"id,omitempty" yaml:"id,omitempty"`
	Geometry   GeoJSONGeometry `json:"geometry" yaml:"geometry"`
}

// GeoJSONGeometry represents the geometry of a feature (Point, Polygon, etc.).
type GeoJSONGeometry struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"` // [X, Y, Z] in local meters
}

// NewFeatureCollection returns an empty collection ready for appending.
func NewFeatureCollection() GeoJSONFeatureCollection {
	return GeoJSONFeatureCollection{Type: "FeatureCollection", Features: []GeoJSONFeature{}}
}

// PointFeature builds a Point feature with the given properties.
func PointFeature(id string, coords []float64, props map[string]any) GeoJSONFeature {
	return GeoJSONFeature{
		Type: "Feature",
		ID:   id,
		Geometry: GeoJSONGeometry{
			Type:        "Point",
			Coordinates: coords,
		},
		Properties: props,
	}
}
