package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
)

// WriteIntersectionGeoJSON writes the common-reachability polygon and the
// display union as a two-feature collection. An empty intersection is still
// written, as an empty Polygon feature, so downstream consumers see an
// explicit "no common reachability" rather than a missing file.
func WriteIntersectionGeoJSON(w io.Writer, intersection, union geom.Polygon) error {
	fc := geojson.NewFeatureCollection()

	f := geojson.NewFeature(geometry.ToOrb(intersection))
	f.Properties["kind"] = "intersection"
	f.Properties["empty"] = len(intersection) == 0
	fc.Append(f)

	u := geojson.NewFeature(geometry.ToOrb(union))
	u.Properties["kind"] = "union"
	fc.Append(u)

	return writeJSON(w, fc)
}

// WritePolygonSetGeoJSON writes one origin's cutoff polygons, tagging each
// feature with its origin and cutoff in minutes.
func WritePolygonSetGeoJSON(w io.Writer, ps *isochrone.PolygonSet) error {
	fc := geojson.NewFeatureCollection()
	for _, cp := range ps.Polygons {
		f := geojson.NewFeature(geometry.ToOrb(cp.Geometry))
		f.Properties["origin"] = cp.OriginID
		f.Properties["minutes"] = cp.Minutes
		fc.Append(f)
	}
	return writeJSON(w, fc)
}

func writeJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding feature collection: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing feature collection: %w", err)
	}
	return nil
}
