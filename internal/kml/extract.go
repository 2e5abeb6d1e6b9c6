package kml

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Row is one flattened placemark.
type Row struct {
	Name        string
	Description string
	Attributes  [3]string
	Coordinate  Coordinate
}

// Record returns the CSV cells of the row.
func (r Row) Record() []string {
	return []string{
		r.Name,
		r.Description,
		r.Attributes[0],
		r.Attributes[1],
		r.Attributes[2],
		r.Coordinate.String(),
	}
}

// Extractor pulls a fixed set of schema attributes out of placemarks.
type Extractor struct {
	Keys [3]string
}

// Header returns the CSV header for the configured keys.
func (e Extractor) Header() []string {
	return []string{"Name", "Description", e.Keys[0], e.Keys[1], e.Keys[2], "Coordinates"}
}

// Rows flattens every placemark of the document container in encounter order.
// Missing attributes become empty strings, a placemark without geometry is an error.
func (e Extractor) Rows(doc *Document) ([]Row, error) {
	container, err := doc.Container()
	if err != nil {
		return nil, err
	}

	placemarks := container.Placemarks()
	if len(placemarks) == 0 && len(container.Folders) > 0 {
		log.Warn().
			Str("container", container.Name).
			Int("folders", len(container.Folders)).
			Msg("Container has no direct placemarks, nested folders are not read")
	}
	rows := make([]Row, 0, len(placemarks))

	for i := range placemarks {
		pm := &placemarks[i]

		coord, err := pm.FirstCoordinate()
		if err != nil {
			return nil, fmt.Errorf("placemark %d (%s): %w", i+1, pm.Name, err)
		}

		attrs := pm.Attributes()
		row := Row{
			Name:        pm.Name,
			Description: pm.Description,
			Coordinate:  coord,
		}
		for k, key := range e.Keys {
			row.Attributes[k] = attrs[key]
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// WriteCSV writes the header followed by one line per row, lines end with CRLF.
func WriteCSV(w io.Writer, header []string, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Convert reads a KML file and writes the extracted rows to a CSV file.
// The output file is only created once every placemark was read successfully.
func (e Extractor) Convert(kmlPath, csvPath string) (int, error) {
	in, err := os.Open(kmlPath)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	doc, err := Parse(in)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kmlPath, err)
	}

	rows, err := e.Rows(doc)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", kmlPath, err)
	}

	out, err := os.Create(csvPath)
	if err != nil {
		return 0, err
	}

	if err := WriteCSV(out, e.Header(), rows); err != nil {
		_ = out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	log.Debug().
		Str("in", kmlPath).
		Str("out", csvPath).
		Int("placemarks", len(rows)).
		Msg("KML converted")

	return len(rows), nil
}

// String renders the tuple as "(lon, lat[, alt])".
func (c Coordinate) String() string {
	parts := make([]string, len(c))
	for i, v := range c {
		parts[i] = formatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatFloat prints the shortest round-trip form, always with a decimal
// point in the fixed range and exponent notation outside of it.
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
