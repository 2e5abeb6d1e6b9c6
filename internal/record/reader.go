package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader yields header-keyed rows from a CSV stream.
type Reader struct {
	csv    *csv.Reader
	header []string
	line   int
}

// NewReader reads the header row and prepares for iteration.
// A leading UTF-8 byte order mark is dropped, spreadsheet exports often carry one.
func NewReader(r io.Reader) (*Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Reader{csv: cr}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	return &Reader{csv: cr, header: header}, nil
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Next returns the next row and its 1-based data line number.
// Cells beyond the header are dropped, missing trailing cells are left out of the map.
func (r *Reader) Next() (map[string]string, int, error) {
	if r.header == nil {
		return nil, 0, io.EOF
	}

	cells, err := r.csv.Read()
	if err != nil {
		return nil, r.line + 1, err
	}
	r.line++

	row := make(map[string]string, len(r.header))
	for i, col := range r.header {
		if i >= len(cells) {
			break
		}
		row[col] = cells[i]
	}

	return row, r.line, nil
}

// Each normalizes every row of r and calls fn with the resulting record.
func Each(r io.Reader, n *Normalizer, fn func(Record) error) error {
	reader, err := NewReader(r)
	if err != nil {
		return err
	}

	for {
		row, line, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		if err := fn(n.Normalize(row, line)); err != nil {
			return err
		}
	}
}

// ReadFile normalizes all rows of a CSV file.
func ReadFile(path string, n *Normalizer) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var records []Record
	err = Each(f, n, func(rec Record) error {
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}

// ListCSV returns the .csv files of a directory in lexical order.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	return files, nil
}

// DirectoryReferenceLatitude computes the mean latitude over every CSV file in dir.
// It must run before any projection so that all files share one reference.
func DirectoryReferenceLatitude(dir string, n *Normalizer) (float64, error) {
	files, err := ListCSV(dir)
	if err != nil {
		return 0, err
	}

	var all []Record
	for _, path := range files {
		records, err := ReadFile(path, n)
		if err != nil {
			return 0, err
		}
		all = append(all, records...)
	}

	ref := ReferenceLatitude(all)
	log.Info().
		Str("dir", dir).
		Int("files", len(files)).
		Int("records", len(all)).
		Float64("reference_latitude", ref).
		Msg("Reference latitude computed")

	return ref, nil
}
