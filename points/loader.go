package points

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrMissingColumn is returned when a required column is absent from the
// input header. It reflects a caller mistake and is fatal.
var ErrMissingColumn = errors.New("missing required column")

// Recognized header names, lowercased.
var (
	nameColumns = []string{"name", "id", "label"}
	latColumns  = []string{"lat", "latitude", "y"}
	lonColumns  = []string{"lon", "lng", "longitude", "x"}
)

// LoadCSV reads a point set from a CSV file. The header must contain a name
// column plus either lat/lon columns or a postcode column (in which case the
// coordinates are resolved later by the geocoder). All remaining columns are
// kept as string attributes.
func LoadCSV(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pts, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pts, nil
}

// ReadCSV decodes points from CSV content. See LoadCSV.
func ReadCSV(r io.Reader) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	nameIdx := findColumn(cols, nameColumns)
	latIdx := findColumn(cols, latColumns)
	lonIdx := findColumn(cols, lonColumns)
	postcodeIdx := findColumn(cols, []string{AttrPostcode})

	if nameIdx < 0 {
		return nil, fmt.Errorf("no name column: %w", ErrMissingColumn)
	}
	hasCoords := latIdx >= 0 && lonIdx >= 0
	if !hasCoords && postcodeIdx < 0 {
		return nil, fmt.Errorf("no latitude/longitude or postcode column: %w", ErrMissingColumn)
	}

	var pts []Point
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(pts)+2, err)
		}
		p := Point{ID: rec[nameIdx]}
		if hasCoords {
			if p.Lat, err = strconv.ParseFloat(rec[latIdx], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad latitude %q: %w", len(pts)+2, rec[latIdx], err)
			}
			if p.Lon, err = strconv.ParseFloat(rec[lonIdx], 64); err != nil {
				return nil, fmt.Errorf("row %d: bad longitude %q: %w", len(pts)+2, rec[lonIdx], err)
			}
		}
		for i, h := range header {
			if i == nameIdx || i == latIdx || i == lonIdx || i >= len(rec) {
				continue
			}
			if rec[i] == "" {
				continue
			}
			if p.Attrs == nil {
				p.Attrs = map[string]string{}
			}
			p.Attrs[strings.ToLower(strings.TrimSpace(h))] = rec[i]
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// LoadGeoJSON reads a point set from a GeoJSON FeatureCollection of Point
// features. The feature property "name" (falling back to "id") becomes the
// point ID; remaining scalar properties become attributes.
func LoadGeoJSON(path string) ([]Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var pts []Point
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		name := f.Properties.MustString("name", "")
		if name == "" {
			name = f.Properties.MustString("id", fmt.Sprintf("feature-%d", i))
		}
		p := Point{ID: name, Lat: pt.Lat(), Lon: pt.Lon()}
		for k, v := range f.Properties {
			if k == "name" || k == "id" {
				continue
			}
			if s, ok := v.(string); ok && s != "" {
				if p.Attrs == nil {
					p.Attrs = map[string]string{}
				}
				p.Attrs[k] = s
			}
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func findColumn(cols map[string]int, names []string) int {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i
		}
	}
	return -1
}
