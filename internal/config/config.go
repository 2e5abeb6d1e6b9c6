// Package config handles configuration loading and shared data structures.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
// Every field is optional, missing values are taken from Default.
type Config struct {
	Columns    Columns    `yaml:"columns"`
	Projection Projection `yaml:"projection"`
	PointCloud PointCloud `yaml:"point_cloud"`
	KML        KML        `yaml:"kml"`
}

// Columns names the CSV columns consumed by the importers.
type Columns struct {
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
	Elevation string `yaml:"elevation"`
	Point     string `yaml:"point"`
	Borehole  string `yaml:"borehole"`
	Month     string `yaml:"month"`
	Datum     string `yaml:"datum"`

	// columns starting with one of these are parsed as numeric attributes
	AttributePrefixes []string `yaml:"attribute_prefixes"`
}

// Projection holds the equirectangular scale factors in meters per degree.
type Projection struct {
	LatitudeScale  float64 `yaml:"latitude_scale"`
	LongitudeScale float64 `yaml:"longitude_scale"`
}

// PointCloud configures the mesh objects built from whole CSV files.
type PointCloud struct {
	Suffix   string     `yaml:"suffix"`
	Material string     `yaml:"material"`
	Color    [4]float64 `yaml:"color"` // RGBA, 0..1
}

// KML configures the markup attribute extractor.
type KML struct {
	Attributes [3]string `yaml:"attributes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Columns: Columns{
			Latitude:          "latitude",
			Longitude:         "longitude",
			Elevation:         "z",
			Point:             "pt",
			Borehole:          "B",
			Month:             "month",
			Datum:             "Datum",
			AttributePrefixes: []string{"mud_", "wat_"},
		},
		Projection: Projection{
			LatitudeScale:  111320,
			LongitudeScale: 111320,
		},
		PointCloud: PointCloud{
			Suffix:   "_PointCloud",
			Material: "PointCloudMaterial",
			Color:    [4]float64{0, 1, 0, 1},
		},
		KML: KML{
			Attributes: [3]string{"Schlamms_01", "Messpunkt", "schlammspiegel_mai"},
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.fill()

	return cfg, nil
}

// fill restores defaults for values explicitly zeroed in the file.
func (c *Config) fill() {
	def := Default()

	if c.Columns.Latitude == "" {
		c.Columns.Latitude = def.Columns.Latitude
	}
	if c.Columns.Longitude == "" {
		c.Columns.Longitude = def.Columns.Longitude
	}
	if c.Projection.LatitudeScale <= 0 {
		c.Projection.LatitudeScale = def.Projection.LatitudeScale
	}
	if c.Projection.LongitudeScale <= 0 {
		c.Projection.LongitudeScale = def.Projection.LongitudeScale
	}
	if c.PointCloud.Suffix == "" {
		c.PointCloud.Suffix = def.PointCloud.Suffix
	}
	if c.PointCloud.Material == "" {
		c.PointCloud.Material = def.PointCloud.Material
	}
	for i, key := range c.KML.Attributes {
		if key == "" {
			c.KML.Attributes[i] = def.KML.Attributes[i]
		}
	}
}
