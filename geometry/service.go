package geometry

import (
	"math"

	"github.com/ctessum/geom"
)

// Service is the capability set the analysis pipeline needs from a geometry
// backend. Implementations must treat all inputs as immutable and return
// freshly allocated results.
type Service interface {
	// Simplify reduces vertex count with the given tolerance in degrees.
	Simplify(p geom.Polygon, tolerance float64) geom.Polygon
	// Intersect returns the polygonal component of a ∩ b. Degenerate
	// point/line artifacts are discarded; a disjoint pair yields the empty
	// polygon.
	Intersect(a, b geom.Polygon) geom.Polygon
	// Union returns a ∪ b.
	Union(a, b geom.Polygon) geom.Polygon
	// Contains reports whether the coordinate lies inside or on the boundary
	// of the polygon.
	Contains(p geom.Polygon, lon, lat float64) bool
	// IsEmpty reports whether the polygon has no area.
	IsEmpty(p geom.Polygon) bool
}

// NewService returns the default geom-backed Service.
func NewService() Service {
	return &engine{}
}

type engine struct{}

func (e *engine) Simplify(p geom.Polygon, tolerance float64) geom.Polygon {
	if tolerance <= 0 || len(p) == 0 {
		return Clone(p)
	}
	simplified := p.Simplify(tolerance)
	switch g := simplified.(type) {
	case geom.Polygon:
		return normalize(g)
	case geom.MultiPolygon:
		return normalize(flatten(g))
	default:
		// Simplification collapsed the polygon entirely.
		return geom.Polygon{}
	}
}

func (e *engine) Intersect(a, b geom.Polygon) geom.Polygon {
	if e.IsEmpty(a) || e.IsEmpty(b) {
		return geom.Polygon{}
	}
	return normalize(asPolygon(a.Intersection(b)))
}

func (e *engine) Union(a, b geom.Polygon) geom.Polygon {
	if e.IsEmpty(a) {
		return Clone(b)
	}
	if e.IsEmpty(b) {
		return Clone(a)
	}
	return normalize(asPolygon(a.Union(b)))
}

func (e *engine) Contains(p geom.Polygon, lon, lat float64) bool {
	if len(p) == 0 {
		return false
	}
	return geom.Point{X: lon, Y: lat}.Within(p) != geom.Outside
}

func (e *engine) IsEmpty(p geom.Polygon) bool {
	if len(p) == 0 {
		return true
	}
	return p.Area() == 0
}

// Clone deep-copies a polygon so accumulators never alias their inputs.
func Clone(p geom.Polygon) geom.Polygon {
	if p == nil {
		return geom.Polygon{}
	}
	out := make(geom.Polygon, len(p))
	for i, ring := range p {
		out[i] = make([]geom.Point, len(ring))
		copy(out[i], ring)
	}
	return out
}

// normalize drops degenerate rings (fewer than three distinct vertices or
// effectively zero area) left behind by boolean operations on touching or
// near-disjoint inputs.
func normalize(p geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, 0, len(p))
	for _, ring := range p {
		if len(ring) < 3 {
			continue
		}
		if math.Abs(ringArea(ring)) < 1e-12 {
			continue
		}
		out = append(out, ring)
	}
	return out
}

// asPolygon converts the Polygonal result of a boolean operation back to a
// Polygon, mirroring the handling in Simplify.
func asPolygon(g geom.Polygonal) geom.Polygon {
	switch v := g.(type) {
	case geom.Polygon:
		return v
	case geom.MultiPolygon:
		return flatten(v)
	default:
		return geom.Polygon{}
	}
}

func flatten(mp geom.MultiPolygon) geom.Polygon {
	var out geom.Polygon
	for _, p := range mp {
		out = append(out, p...)
	}
	return out
}

// ringArea is the signed shoelace area of one ring.
func ringArea(ring []geom.Point) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}
