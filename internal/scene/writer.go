package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/woozymasta/geosurvey/internal/geo"

	"github.com/rs/zerolog/log"
)

// PointsFile is the GeoJSON document holding all labeled points.
const PointsFile = "points.geojson"

// Writer is a file backed Host.
// Meshes are written as soon as they are added, labeled points are
// collected and written as one GeoJSON feature collection on Close.
type Writer struct {
	doc         *Memory
	Dir         string
	PreviewSize int
	Preview     bool
}

// NewWriter creates the output directory and returns a Writer.
func NewWriter(dir string, preview bool, previewSize int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Writer{
		doc:         NewMemory(),
		Dir:         dir,
		Preview:     preview,
		PreviewSize: previewSize,
	}, nil
}

// AddLabeledPoint queues a point for the GeoJSON output.
func (w *Writer) AddLabeledPoint(p LabeledPoint) error {
	return w.doc.AddLabeledPoint(p)
}

// AddMesh writes the mesh as PLY (and optionally a WebP preview).
func (w *Writer) AddMesh(m Mesh) error {
	if err := w.doc.AddMesh(m); err != nil {
		return err
	}

	plyPath := filepath.Join(w.Dir, m.Name+".ply")
	if err := writeFile(plyPath, func(f *os.File) error { return WritePLY(f, m) }); err != nil {
		return fmt.Errorf("write mesh %s: %w", m.Name, err)
	}

	log.Debug().
		Str("mesh", m.Name).
		Str("path", plyPath).
		Int("vertices", len(m.Vertices)).
		Msg("Mesh written")

	if !w.Preview {
		return nil
	}

	previewPath := filepath.Join(w.Dir, m.Name+".webp")
	if err := writeFile(previewPath, func(f *os.File) error { return WritePreview(f, m, w.PreviewSize) }); err != nil {
		return fmt.Errorf("write preview %s: %w", m.Name, err)
	}

	return nil
}

// Document exposes the collected scene.
func (w *Writer) Document() *Memory {
	return w.doc
}

// Close writes the labeled points. Nothing is written when no point was added.
func (w *Writer) Close() error {
	points := w.doc.Points()
	if len(points) == 0 {
		return nil
	}

	fc := geo.NewFeatureCollection()
	for _, p := range points {
		fc.Features = append(fc.Features, geo.PointFeature(
			p.Name,
			[]float64{p.Location.X, p.Location.Y, p.Location.Z},
			p.Metadata,
		))
	}

	path := filepath.Join(w.Dir, PointsFile)
	err := writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("points", len(points)).
		Msg("Labeled points written")

	return nil
}

func writeFile(path string, fn func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(f)
}
