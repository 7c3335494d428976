package analysis

import (
	"log"

	"github.com/ctessum/geom"

	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
)

// IntersectionEngine progressively intersects one polygon per origin into a
// single common-reachability polygon, and keeps the running union of
// everything seen for display alongside it. Both accumulators are built one
// polygon at a time, never reconstructed from scratch.
type IntersectionEngine struct {
	svc       geometry.Service
	seeded    bool
	count     int
	intersect geom.Polygon
	union     geom.Polygon
	// emptiedBy records the origin whose polygon first emptied the
	// intersection, for end-of-run reporting.
	emptiedBy string
}

// NewIntersectionEngine creates an empty engine.
func NewIntersectionEngine(svc geometry.Service) *IntersectionEngine {
	return &IntersectionEngine{svc: svc}
}

// Accumulate folds one origin's polygon set into both accumulators. Each set
// contributes its largest-cutoff polygon. The first successful origin seeds
// both accumulators with clones; order matters only for that seeding rule.
func (e *IntersectionEngine) Accumulate(ps *isochrone.PolygonSet) {
	polygon := ps.Largest().Geometry
	e.count++

	if !e.seeded {
		e.intersect = geometry.Clone(polygon)
		e.union = geometry.Clone(polygon)
		e.seeded = true
		return
	}

	e.union = e.svc.Union(e.union, polygon)

	if e.svc.IsEmpty(e.intersect) {
		// Empty propagates; nothing further can grow it.
		return
	}
	e.intersect = e.svc.Intersect(e.intersect, polygon)
	if e.svc.IsEmpty(e.intersect) && e.emptiedBy == "" {
		e.emptiedBy = ps.Origin.ID
	}
}

// Result returns the current common-reachability polygon. Callers must
// tolerate an empty polygon, meaning no common reachability exists across
// the accumulated origins.
func (e *IntersectionEngine) Result() geom.Polygon {
	if !e.seeded {
		return geom.Polygon{}
	}
	return e.intersect
}

// Union returns the running union of all accumulated polygons.
func (e *IntersectionEngine) Union() geom.Polygon {
	if !e.seeded {
		return geom.Polygon{}
	}
	return e.union
}

// Empty reports whether the accumulated intersection has no area.
func (e *IntersectionEngine) Empty() bool {
	return !e.seeded || e.svc.IsEmpty(e.intersect)
}

// Count returns how many origins have been accumulated.
func (e *IntersectionEngine) Count() int {
	return e.count
}

// ReportResult logs the outcome once all origins are in.
func (e *IntersectionEngine) ReportResult() {
	if !e.Empty() {
		log.Printf("common reachability polygon found across %d origins", e.count)
		return
	}
	if e.emptiedBy != "" {
		log.Printf("no common reachability across %d origins (intersection became empty at origin %s)", e.count, e.emptiedBy)
		return
	}
	log.Printf("no common reachability across %d origins", e.count)
}
