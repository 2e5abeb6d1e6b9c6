// Package kml reads placemarks and their schema attributes from KML documents.
package kml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// Errors returned while walking a document.
var (
	ErrNoContainer   = errors.New("kml: document has no Document or Folder container")
	ErrNoGeometry    = errors.New("kml: placemark has no geometry")
	ErrNoCoordinates = errors.New("kml: geometry has no coordinates")
)

// Document is the parsed <kml> root.
type Document struct {
	XMLName  xml.Name   `xml:"kml"`
	Document *Container `xml:"Document"`
	Folder   *Container `xml:"Folder"`
}

// Container is a Document or Folder feature.
type Container struct {
	Name        string      `xml:"name"`
	Description string      `xml:"description"`
	Children    []Placemark `xml:"Placemark"`
	Folders     []Container `xml:"Folder"`
}

// Placemark is a named geometry with extended data.
type Placemark struct {
	Name          string         `xml:"name"`
	Description   string         `xml:"description"`
	ExtendedData  *ExtendedData  `xml:"ExtendedData"`
	Point         *Geometry      `xml:"Point"`
	LineString    *Geometry      `xml:"LineString"`
	LinearRing    *Geometry      `xml:"LinearRing"`
	Polygon       *Polygon       `xml:"Polygon"`
	MultiGeometry *MultiGeometry `xml:"MultiGeometry"`
}

// ExtendedData holds untyped Data pairs and typed SchemaData blocks.
type ExtendedData struct {
	Data       []Data       `xml:"Data"`
	SchemaData []SchemaData `xml:"SchemaData"`
}

// Data is an untyped name/value pair.
type Data struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// SchemaData is a block of SimpleData values bound to a schema.
type SchemaData struct {
	SchemaURL  string       `xml:"schemaUrl,attr"`
	SimpleData []SimpleData `xml:"SimpleData"`
}

// SimpleData is one typed attribute value.
type SimpleData struct {
	Name string `xml:"name,attr"`
	Text string `xml:",chardata"`
}

// Geometry is any geometry carrying a <coordinates> element.
type Geometry struct {
	Coordinates string `xml:"coordinates"`
}

// Polygon exposes its outer boundary ring.
type Polygon struct {
	Outer *Geometry `xml:"outerBoundaryIs>LinearRing"`
}

// MultiGeometry groups geometries, only the simple kinds are read.
type MultiGeometry struct {
	Points      []Geometry `xml:"Point"`
	LineStrings []Geometry `xml:"LineString"`
	Polygons    []Polygon  `xml:"Polygon"`
}

// spaceAfterComma matches separators written as "lon, lat, alt".
var spaceAfterComma = regexp.MustCompile(`,\s+`)

// Coordinate is one lon,lat[,alt] tuple.
type Coordinate []float64

// Parse decodes a KML document. Non UTF-8 encodings declared in the
// XML prolog are converted.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("kml: decode: %w", err)
	}

	return &doc, nil
}

// Container returns the top level feature container.
func (d *Document) Container() (*Container, error) {
	switch {
	case d.Document != nil:
		return d.Document, nil
	case d.Folder != nil:
		return d.Folder, nil
	default:
		return nil, ErrNoContainer
	}
}

// Placemarks returns the direct placemark children, nested folders are not searched.
func (c *Container) Placemarks() []Placemark {
	return c.Children
}

// Attributes flattens all SchemaData values into a map. Later names overwrite earlier ones.
// Untyped Data elements are not schema data and are ignored.
func (p *Placemark) Attributes() map[string]string {
	attrs := make(map[string]string)
	if p.ExtendedData == nil {
		return attrs
	}

	for _, sd := range p.ExtendedData.SchemaData {
		for _, v := range sd.SimpleData {
			attrs[v.Name] = v.Text
		}
	}

	return attrs
}

// Geometry returns the first geometry of the placemark that carries coordinates.
func (p *Placemark) Geometry() (*Geometry, error) {
	switch {
	case p.Point != nil:
		return p.Point, nil
	case p.LineString != nil:
		return p.LineString, nil
	case p.LinearRing != nil:
		return p.LinearRing, nil
	case p.Polygon != nil:
		if p.Polygon.Outer == nil {
			return nil, ErrNoCoordinates
		}
		return p.Polygon.Outer, nil
	case p.MultiGeometry != nil:
		return p.MultiGeometry.first()
	}

	return nil, ErrNoGeometry
}

func (m *MultiGeometry) first() (*Geometry, error) {
	switch {
	case len(m.Points) > 0:
		return &m.Points[0], nil
	case len(m.LineStrings) > 0:
		return &m.LineStrings[0], nil
	case len(m.Polygons) > 0 && m.Polygons[0].Outer != nil:
		return m.Polygons[0].Outer, nil
	}
	return nil, ErrNoGeometry
}

// FirstCoordinate returns the first tuple of the placemark geometry.
func (p *Placemark) FirstCoordinate() (Coordinate, error) {
	g, err := p.Geometry()
	if err != nil {
		return nil, err
	}

	coords, err := g.Tuples()
	if err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, ErrNoCoordinates
	}

	return coords[0], nil
}

// Tuples parses the whitespace separated coordinate tuples.
// Whitespace following a comma belongs to the tuple, not the separator.
func (g *Geometry) Tuples() ([]Coordinate, error) {
	fields := strings.Fields(spaceAfterComma.ReplaceAllString(g.Coordinates, ","))
	coords := make([]Coordinate, 0, len(fields))

	for _, field := range fields {
		parts := strings.Split(strings.Trim(field, ","), ",")
		c := make(Coordinate, 0, len(parts))
		for _, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("kml: coordinate %q: %w", field, err)
			}
			c = append(c, v)
		}
		coords = append(coords, c)
	}

	return coords, nil
}
