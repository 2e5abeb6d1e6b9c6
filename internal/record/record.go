// Package record turns survey CSV rows into typed records.
package record

import (
	"math"
	"strconv"
	"strings"

	"github.com/woozymasta/geosurvey/internal/config"
	"github.com/woozymasta/geosurvey/internal/geo"

	"github.com/rs/zerolog/log"
)

// Record is one normalized survey row.
// Nil pointers mark absent or unparseable values.
type Record struct {
	Latitude   *float64
	Longitude  *float64
	Elevation  *float64
	Fields     map[string]*string  // identification columns, verbatim
	Attributes map[string]*float64 // prefixed numeric columns
	Raw        map[string]string
	Line       int
}

// HasPosition reports whether both latitude and longitude are present.
func (r Record) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Depth returns the elevation, defaulting to 0 when absent.
func (r Record) Depth() float64 {
	if r.Elevation == nil {
		return 0
	}
	return *r.Elevation
}

// Field returns an identification value, nil when the column is absent.
func (r Record) Field(name string) *string {
	return r.Fields[name]
}

// ParseField parses a numeric cell. It never fails: empty, missing,
// non-numeric and non-finite input all yield nil.
func ParseField(raw *string) *float64 {
	if raw == nil {
		return nil
	}

	s := strings.TrimSpace(*raw)
	if s == "" || isHex(s) {
		return nil
	}

	if strings.Contains(s, "_") {
		var ok bool
		if s, ok = stripDigitSeparators(s); !ok {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

// isHex reports a 0x prefix after an optional sign, strconv accepts hex floats.
func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// stripDigitSeparators removes underscores placed between two digits ("1_000").
// Any other underscore makes the value invalid.
func stripDigitSeparators(s string) (string, bool) {
	isDigit := func(c byte) bool { return c >= '0' && c <= '9' }

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}

	return b.String(), true
}

// Normalizer maps raw CSV rows to records using configured column names.
type Normalizer struct {
	Columns config.Columns
}

// NewNormalizer returns a normalizer for the given columns.
func NewNormalizer(cols config.Columns) *Normalizer {
	return &Normalizer{Columns: cols}
}

// Normalize converts a column→value row into a Record.
func (n *Normalizer) Normalize(row map[string]string, line int) Record {
	rec := Record{
		Latitude:   ParseField(lookup(row, n.Columns.Latitude)),
		Longitude:  ParseField(lookup(row, n.Columns.Longitude)),
		Elevation:  ParseField(lookup(row, n.Columns.Elevation)),
		Fields:     make(map[string]*string),
		Attributes: make(map[string]*float64),
		Raw:        row,
		Line:       line,
	}

	for _, col := range n.identityColumns() {
		rec.Fields[col] = lookup(row, col)
	}

	for key, value := range row {
		if n.IsAttribute(key) {
			rec.Attributes[key] = ParseField(&value)
		}
	}

	if !rec.HasPosition() {
		log.Debug().
			Int("line", line).
			Interface("row", row).
			Msg("Row has no usable latitude/longitude")
	}

	return rec
}

// IsAttribute reports whether a column matches one of the attribute prefixes.
func (n *Normalizer) IsAttribute(column string) bool {
	for _, prefix := range n.Columns.AttributePrefixes {
		if prefix != "" && strings.HasPrefix(column, prefix) {
			return true
		}
	}
	return false
}

func (n *Normalizer) identityColumns() []string {
	cols := make([]string, 0, 4)
	for _, c := range []string{n.Columns.Point, n.Columns.Borehole, n.Columns.Month, n.Columns.Datum} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func lookup(row map[string]string, key string) *string {
	if key == "" {
		return nil
	}
	v, ok := row[key]
	if !ok {
		return nil
	}
	return &v
}

// ReferenceLatitude returns the mean of all present latitudes, 0 if there are none.
func ReferenceLatitude(records []Record) float64 {
	lats := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Latitude != nil {
			lats = append(lats, *r.Latitude)
		}
	}
	return geo.Mean(lats)
}
