package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/woozymasta/geosurvey/internal/geo"
	"github.com/woozymasta/geosurvey/internal/record"
	"github.com/woozymasta/geosurvey/internal/scene"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCloudSuffix is appended to the source file stem to name a point cloud.
const DefaultCloudSuffix = "_PointCloud"

// CloudBuilder turns all records of one file into a single point cloud mesh.
type CloudBuilder struct {
	Projector *geo.Projector
	Host      scene.Host
	Material  scene.Material
	Suffix    string
}

// MeshName derives the mesh name from a CSV file path.
func (cb *CloudBuilder) MeshName(path string) string {
	suffix := cb.Suffix
	if suffix == "" {
		suffix = DefaultCloudSuffix
	}
	return strings.TrimSuffix(filepath.Base(path), ".csv") + suffix
}

// Build projects every record with a position and adds one mesh to the host.
// When no record is usable nothing is added.
func (cb *CloudBuilder) Build(name string, records []record.Record) (Stats, error) {
	var stats Stats
	points := make([]r3.Vec, 0, len(records))

	for _, rec := range records {
		p, ok := cb.project(rec)
		if !ok {
			stats.Skipped++
			continue
		}
		points = append(points, p)
	}

	if len(points) == 0 {
		log.Warn().Str("mesh", name).Msg("No valid points to display.")
		return stats, nil
	}

	mesh := scene.Mesh{
		Name:     name,
		Material: cb.Material,
		Vertices: points,
	}
	if err := cb.Host.AddMesh(mesh); err != nil {
		return stats, fmt.Errorf("add mesh %s: %w", name, err)
	}
	stats.Added = len(points)

	log.Info().
		Str("mesh", name).
		Int("points", stats.Added).
		Int("skipped", stats.Skipped).
		Msg("Point cloud created")

	return stats, nil
}

// BuildFile reads one CSV file and builds its point cloud.
func (cb *CloudBuilder) BuildFile(path string, n *record.Normalizer) (Stats, error) {
	log.Info().Str("file", path).Msg("Processing file")

	records, err := record.ReadFile(path, n)
	if err != nil {
		return Stats{}, err
	}

	return cb.Build(cb.MeshName(path), records)
}

// project converts one record. A failure on a single row is logged and the row dropped.
func (cb *CloudBuilder) project(rec record.Record) (p r3.Vec, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("line", rec.Line).
				Interface("row", rec.Raw).
				Str("error", fmt.Sprint(r)).
				Msg("Error processing row")
			ok = false
		}
	}()

	if !rec.HasPosition() {
		log.Warn().
			Int("line", rec.Line).
			Interface("row", rec.Raw).
			Msg("Skipping row due to missing or invalid data")
		return r3.Vec{}, false
	}

	return cb.Projector.Project(*rec.Latitude, *rec.Longitude, rec.Depth()), true
}
