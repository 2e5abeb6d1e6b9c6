package kml

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>survey</name>
    <Schema name="points" id="points">
      <SimpleField name="Schlamms_01" type="string"/>
    </Schema>
    <Placemark>
      <name>P1</name>
      <description>first, with comma</description>
      <ExtendedData>
        <Data name="Messpunkt"><value>ignored</value></Data>
        <SchemaData schemaUrl="#points">
          <SimpleData name="Schlamms_01">0.42</SimpleData>
          <SimpleData name="Messpunkt">M-1</SimpleData>
          <SimpleData name="schlammspiegel_mai">1.1</SimpleData>
        </SchemaData>
        <SchemaData schemaUrl="#points">
          <SimpleData name="Messpunkt">M-1b</SimpleData>
        </SchemaData>
      </ExtendedData>
      <Point><coordinates>11.5,48.1,0</coordinates></Point>
    </Placemark>
    <Placemark>
      <name>P2</name>
      <ExtendedData>
        <SchemaData schemaUrl="#points">
          <SimpleData name="Messpunkt">M-2</SimpleData>
        </SchemaData>
      </ExtendedData>
      <LineString><coordinates>
        11.25,48.0 11.3,48.2
      </coordinates></LineString>
    </Placemark>
    <Folder>
      <Placemark>
        <name>nested</name>
        <Point><coordinates>1,2</coordinates></Point>
      </Placemark>
    </Folder>
  </Document>
</kml>`

var extractor = Extractor{Keys: [3]string{"Schlamms_01", "Messpunkt", "schlammspiegel_mai"}}

func parse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	return doc
}

func TestContainerAndPlacemarks(t *testing.T) {
	doc := parse(t, sample)

	c, err := doc.Container()
	require.NoError(t, err)
	assert.Equal(t, "survey", c.Name)

	pms := c.Placemarks()
	require.Len(t, pms, 2)
	assert.Equal(t, "P1", pms[0].Name)
	assert.Equal(t, "P2", pms[1].Name)
}

func TestContainerFolderRoot(t *testing.T) {
	doc := parse(t, `<kml><Folder><Placemark><name>x</name></Placemark></Folder></kml>`)

	c, err := doc.Container()
	require.NoError(t, err)
	assert.Len(t, c.Placemarks(), 1)
}

func TestContainerMissing(t *testing.T) {
	doc := parse(t, `<kml><Placemark><name>x</name></Placemark></kml>`)

	_, err := doc.Container()
	assert.ErrorIs(t, err, ErrNoContainer)

	_, err = extractor.Rows(doc)
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestAttributesLastWriteWins(t *testing.T) {
	pms := parse(t, sample).Document.Placemarks()

	attrs := pms[0].Attributes()
	assert.Equal(t, map[string]string{
		"Schlamms_01":        "0.42",
		"Messpunkt":          "M-1b",
		"schlammspiegel_mai": "1.1",
	}, attrs)

	assert.Empty(t, (&Placemark{}).Attributes())
}

func TestFirstCoordinate(t *testing.T) {
	tests := []struct {
		name string
		pm   Placemark
		want Coordinate
		err  error
	}{
		{"point", Placemark{Point: &Geometry{Coordinates: " 1,2,3 "}}, Coordinate{1, 2, 3}, nil},
		{"spaced separators", Placemark{Point: &Geometry{Coordinates: "11.5, 48.1, 0"}}, Coordinate{11.5, 48.1, 0}, nil},
		{"spaced line", Placemark{LineString: &Geometry{Coordinates: "1,\t2 3, 4"}}, Coordinate{1, 2}, nil},
		{"line", Placemark{LineString: &Geometry{Coordinates: "1,2 3,4"}}, Coordinate{1, 2}, nil},
		{"ring", Placemark{LinearRing: &Geometry{Coordinates: "5,6 7,8 5,6"}}, Coordinate{5, 6}, nil},
		{"polygon", Placemark{Polygon: &Polygon{Outer: &Geometry{Coordinates: "9,9 1,1"}}}, Coordinate{9, 9}, nil},
		{"multi", Placemark{MultiGeometry: &MultiGeometry{LineStrings: []Geometry{{Coordinates: "4,4"}}}}, Coordinate{4, 4}, nil},
		{"no geometry", Placemark{}, nil, ErrNoGeometry},
		{"empty multi", Placemark{MultiGeometry: &MultiGeometry{}}, nil, ErrNoGeometry},
		{"empty coordinates", Placemark{Point: &Geometry{}}, nil, ErrNoCoordinates},
		{"polygon without ring", Placemark{Polygon: &Polygon{}}, nil, ErrNoCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pm.FirstCoordinate()
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTuplesInvalidNumber(t *testing.T) {
	_, err := (&Geometry{Coordinates: "1,abc"}).Tuples()
	assert.Error(t, err)
}

func TestCoordinateString(t *testing.T) {
	assert.Equal(t, "(11.5, 48.1, 0.0)", Coordinate{11.5, 48.1, 0}.String())
	assert.Equal(t, "(-3.0, 1e-05)", Coordinate{-3, 0.00001}.String())
	assert.Equal(t, "(1234567.0, 1e+16)", Coordinate{1234567, 1e16}.String())
	assert.Equal(t, "()", Coordinate{}.String())
}

func TestRowsMissingAttributeIsEmpty(t *testing.T) {
	rows, err := extractor.Rows(parse(t, sample))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"P2", "", "", "M-2", "", "(11.25, 48.0)"}, rows[1].Record())
	assert.Len(t, rows[1].Record(), len(extractor.Header()))
}

func TestRowsWarnsOnFolderOnlyContainer(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	doc := parse(t, `<kml><Document><name>nested</name><Folder><Placemark><name>x</name><Point><coordinates>1,2</coordinates></Point></Placemark></Folder></Document></kml>`)

	rows, err := extractor.Rows(doc)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "nested folders are not read")
	assert.Contains(t, buf.String(), `"folders":1`)

	buf.Reset()
	_, err = extractor.Rows(parse(t, sample))
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "nested folders are not read")
}

func TestRowsMissingGeometryFails(t *testing.T) {
	doc := parse(t, `<kml><Document><Placemark><name>bare</name></Placemark></Document></kml>`)

	_, err := extractor.Rows(doc)
	assert.ErrorIs(t, err, ErrNoGeometry)
	assert.Contains(t, err.Error(), "bare")
}

func TestWriteCSV(t *testing.T) {
	rows, err := extractor.Rows(parse(t, sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, extractor.Header(), rows))

	want := "Name,Description,Schlamms_01,Messpunkt,schlammspiegel_mai,Coordinates\r\n" +
		"P1,\"first, with comma\",0.42,M-1b,1.1,\"(11.5, 48.1, 0.0)\"\r\n" +
		"P2,,,M-2,,\"(11.25, 48.0)\"\r\n"
	assert.Equal(t, want, buf.String())
}

func TestConvertIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.kml")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))

	outA := filepath.Join(dir, "a.csv")
	outB := filepath.Join(dir, "b.csv")

	n, err := extractor.Convert(in, outA)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = extractor.Convert(in, outB)
	require.NoError(t, err)

	a, err := os.ReadFile(outA)
	require.NoError(t, err)
	b, err := os.ReadFile(outB)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.kml")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte(`<kml><Document><Placemark/></Document></kml>`), 0o644))

	_, err := extractor.Convert(in, out)
	assert.ErrorIs(t, err, ErrNoGeometry)
	assert.NoFileExists(t, out)

	_, err = extractor.Convert(filepath.Join(dir, "missing.kml"), out)
	assert.Error(t, err)
}

func TestParseCharset(t *testing.T) {
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n<kml><Document><Placemark><name>M\xfchle</name><Point><coordinates>1,2</coordinates></Point></Placemark></Document></kml>")

	doc, err := Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Mühle", doc.Document.Placemarks()[0].Name)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("<kml><Document>"))
	assert.Error(t, err)
}
