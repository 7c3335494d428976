// Package geometry wraps the concrete geometry library behind a narrow
// Service interface: simplify, intersect, union and point containment are the
// only capabilities the analysis pipeline needs. The default backend is
// github.com/ctessum/geom, whose polygon boolean operations are pure Go.
//
// All coordinates are WGS-84 degrees with X=longitude and Y=latitude.
// Intersections of near-disjoint polygons can produce degenerate slivers;
// Service implementations normalize those away so an empty result is always
// the explicit empty polygon, never a point or line artifact.
package geometry
