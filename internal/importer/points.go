// Package importer maps survey records onto scene objects.
package importer

import (
	"fmt"

	"github.com/woozymasta/geosurvey/internal/config"
	"github.com/woozymasta/geosurvey/internal/geo"
	"github.com/woozymasta/geosurvey/internal/record"
	"github.com/woozymasta/geosurvey/internal/scene"

	"github.com/rs/zerolog/log"
)

// absent renders a missing identification field inside point names.
const absent = "None"

// Stats summarizes one import.
type Stats struct {
	Added      int
	Skipped    int
	Duplicates int
}

// PointImporter creates one labeled point per record.
type PointImporter struct {
	Projector *geo.Projector
	Host      scene.Host
	Columns   config.Columns

	seen map[string]int
}

// NewPointImporter returns an importer writing to host.
func NewPointImporter(p *geo.Projector, host scene.Host, cols config.Columns) *PointImporter {
	return &PointImporter{
		Projector: p,
		Host:      host,
		Columns:   cols,
		seen:      make(map[string]int),
	}
}

// Import adds a labeled point for every record with a position.
// Records without latitude or longitude are skipped, host errors abort the import.
func (pi *PointImporter) Import(records []record.Record) (Stats, error) {
	var stats Stats

	for _, rec := range records {
		res, err := pi.add(rec)
		if err != nil {
			return stats, err
		}
		switch res {
		case skipped:
			stats.Skipped++
		case replaced:
			stats.Added++
			stats.Duplicates++
		default:
			stats.Added++
		}
	}

	return stats, nil
}

// ImportFile reads a CSV file and imports its records.
func (pi *PointImporter) ImportFile(path string, n *record.Normalizer) (Stats, error) {
	records, err := record.ReadFile(path, n)
	if err != nil {
		return Stats{}, err
	}

	stats, err := pi.Import(records)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", path, err)
	}

	log.Info().
		Str("file", path).
		Int("added", stats.Added).
		Int("skipped", stats.Skipped).
		Int("duplicates", stats.Duplicates).
		Msg("Labeled points imported")

	return stats, nil
}

type outcome int

const (
	added outcome = iota
	replaced
	skipped
)

func (pi *PointImporter) add(rec record.Record) (outcome, error) {
	if !rec.HasPosition() {
		log.Warn().
			Int("line", rec.Line).
			Interface("row", rec.Raw).
			Msg("Skipping row due to missing longitude or latitude")
		return skipped, nil
	}

	point := scene.LabeledPoint{
		Name:     pi.Name(rec),
		Location: pi.Projector.Project(*rec.Latitude, *rec.Longitude, rec.Depth()),
		Metadata: pi.Metadata(rec),
	}

	if pi.seen == nil {
		pi.seen = make(map[string]int)
	}
	res := added
	pi.seen[point.Name]++
	if pi.seen[point.Name] > 1 {
		res = replaced
		log.Warn().
			Str("name", point.Name).
			Int("line", rec.Line).
			Msg("Duplicate point name, replacing previous point")
	}

	log.Info().
		Str("name", point.Name).
		Float64("x", point.Location.X).
		Float64("y", point.Location.Y).
		Float64("z", point.Location.Z).
		Interface("metadata", point.Metadata).
		Msg("Adding point")

	if err := pi.Host.AddLabeledPoint(point); err != nil {
		return skipped, fmt.Errorf("add point %s: %w", point.Name, err)
	}

	return res, nil
}

// Name builds the point name from borehole, point id and month.
func (pi *PointImporter) Name(rec record.Record) string {
	return fmt.Sprintf("B%s_pt%s_month%s",
		text(rec.Field(pi.Columns.Borehole)),
		text(rec.Field(pi.Columns.Point)),
		text(rec.Field(pi.Columns.Month)))
}

// Metadata collects the datum and all prefixed attributes, dropping absent values.
func (pi *PointImporter) Metadata(rec record.Record) map[string]any {
	meta := make(map[string]any, len(rec.Attributes)+1)

	if pi.Columns.Datum != "" {
		if v := rec.Field(pi.Columns.Datum); v != nil {
			meta[pi.Columns.Datum] = *v
		}
	}

	for key, v := range rec.Attributes {
		if v != nil {
			meta[key] = *v
		}
	}

	return meta
}

func text(v *string) string {
	if v == nil {
		return absent
	}
	return *v
}
