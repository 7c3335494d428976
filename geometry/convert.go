package geometry

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb"
)

// FromOrb converts a decoded GeoJSON geometry into the backend polygon type.
// MultiPolygons are flattened into one ring list; anything non-polygonal is
// rejected.
func FromOrb(g orb.Geometry) (geom.Polygon, error) {
	switch t := g.(type) {
	case orb.Polygon:
		return orbPolygon(t), nil
	case orb.MultiPolygon:
		var out geom.Polygon
		for _, p := range t {
			out = append(out, orbPolygon(p)...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.GeoJSONType())
	}
}

// ToOrb converts a backend polygon back to an orb geometry for GeoJSON output.
func ToOrb(p geom.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(p))
	for _, ring := range p {
		r := make(orb.Ring, 0, len(ring)+1)
		for _, pt := range ring {
			r = append(r, orb.Point{pt.X, pt.Y})
		}
		// GeoJSON rings are closed; the backend stores them open.
		if len(r) > 0 && r[0] != r[len(r)-1] {
			r = append(r, r[0])
		}
		out = append(out, r)
	}
	return out
}

func orbPolygon(p orb.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		pts := make([]geom.Point, 0, len(ring))
		for i, pt := range ring {
			// Skip the closing vertex GeoJSON repeats.
			if i == len(ring)-1 && len(ring) > 1 && pt == ring[0] {
				continue
			}
			pts = append(pts, geom.Point{X: pt.Lon(), Y: pt.Lat()})
		}
		out = append(out, pts)
	}
	return out
}
