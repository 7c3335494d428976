package analysis

import (
	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// RowBuilder spatially classifies destinations against one origin's cutoff
// polygons. This is the dominant cost of a matrix run: O(cutoffs ×
// destinations) point-in-polygon tests per origin, which the optional
// destination index narrows by bounding box first.
type RowBuilder struct {
	svc   geometry.Service
	dests []points.Point
	index *points.Index
}

// NewRowBuilder creates a builder over a fixed destination set. index may be
// nil, in which case every destination is tested against every polygon.
func NewRowBuilder(svc geometry.Service, dests []points.Point, index *points.Index) *RowBuilder {
	return &RowBuilder{svc: svc, dests: dests, index: index}
}

// BuildRow computes, for every destination, the minimum cutoff whose polygon
// contains it. Cutoff polygons are normally nested, but the engine does not
// guarantee it, so the minimum is taken over all polygons actually tested
// rather than stopping at the first hit in ascending order.
func (b *RowBuilder) BuildRow(ps *isochrone.PolygonSet) ReachabilityRow {
	row := make(ReachabilityRow, len(b.dests))
	for _, d := range b.dests {
		row[d.ID] = Unreachable
	}

	for _, cp := range ps.Polygons {
		minutes := float64(cp.Minutes)
		for _, d := range b.candidates(cp) {
			if row[d.ID] <= minutes {
				continue
			}
			if b.svc.Contains(cp.Geometry, d.Lon, d.Lat) {
				row[d.ID] = minutes
			}
		}
	}
	return row
}

// candidates returns destinations whose location can possibly fall inside
// the polygon, using the bounding-box index when available.
func (b *RowBuilder) candidates(cp isochrone.CutoffPolygon) []points.Point {
	if b.index == nil || len(cp.Geometry) == 0 {
		return b.dests
	}
	bounds := cp.Geometry.Bounds()
	return b.index.WithinBounds(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
}
