package isochrone

import (
	"fmt"
	"sort"
	"time"

	"github.com/ctessum/geom"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
)

// DefaultSimplifyTolerance bounds the cost of later geometric operations.
// Degrees; roughly 100m at mid latitudes.
const DefaultSimplifyTolerance = 0.001

// ParseError means a response payload could not be decoded into any polygon.
// The owning origin is classified as failed; the batch continues.
type ParseError struct {
	OriginID string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("origin %s: parsing isochrone response: %v", e.OriginID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CutoffPolygon is one isochrone polygon tagged with its cutoff and owner.
type CutoffPolygon struct {
	OriginID string
	// Minutes is the cutoff; the engine reports seconds and the conversion
	// happens exactly once, here.
	Minutes  int
	Geometry geom.Polygon
}

// PolygonSet is the ordered polygon collection for one (origin, query time)
// pair. It is never mutated after Parse.
type PolygonSet struct {
	Origin    points.Point
	QueryTime time.Time
	// Polygons is sorted by ascending cutoff.
	Polygons []CutoffPolygon
	// MissingCutoffs lists requested cutoffs the engine produced no polygon
	// for. Expected under normal operation, kept for diagnostic messaging.
	MissingCutoffs []int
}

// Parse decodes a raw isochrone result into a PolygonSet, simplifying each
// polygon with the given tolerance. requestedCutoffs (minutes) is used only
// to detect missing cutoffs. A non-OK result or undecodable payload yields a
// ParseError.
func Parse(res routing.RawResult, origin points.Point, queryTime time.Time, requestedCutoffs []int, svc geometry.Service, tolerance float64) (*PolygonSet, error) {
	if !res.OK() {
		return nil, &ParseError{OriginID: origin.ID, Err: fmt.Errorf("engine returned %s", res.Code)}
	}
	fc, err := geojson.UnmarshalFeatureCollection(res.Body)
	if err != nil {
		return nil, &ParseError{OriginID: origin.ID, Err: err}
	}

	ps := &PolygonSet{Origin: origin, QueryTime: queryTime}
	for _, f := range fc.Features {
		seconds := f.Properties.MustFloat64("time", -1)
		if seconds < 0 {
			continue
		}
		poly, err := geometry.FromOrb(f.Geometry)
		if err != nil {
			continue
		}
		simplified := svc.Simplify(poly, tolerance)
		if svc.IsEmpty(simplified) {
			continue
		}
		ps.Polygons = append(ps.Polygons, CutoffPolygon{
			OriginID: origin.ID,
			Minutes:  int(seconds / 60),
			Geometry: simplified,
		})
	}
	if len(ps.Polygons) == 0 {
		return nil, &ParseError{OriginID: origin.ID, Err: fmt.Errorf("no polygon features in payload")}
	}

	sort.SliceStable(ps.Polygons, func(i, j int) bool {
		return ps.Polygons[i].Minutes < ps.Polygons[j].Minutes
	})

	have := make(map[int]bool, len(ps.Polygons))
	for _, cp := range ps.Polygons {
		have[cp.Minutes] = true
	}
	for _, c := range requestedCutoffs {
		if !have[c] {
			ps.MissingCutoffs = append(ps.MissingCutoffs, c)
		}
	}
	return ps, nil
}

// Largest returns the polygon with the largest cutoff, used by the
// intersection pipeline where each origin contributes a single cutoff.
func (ps *PolygonSet) Largest() CutoffPolygon {
	return ps.Polygons[len(ps.Polygons)-1]
}

// Cutoffs returns the achieved cutoff values in ascending order.
func (ps *PolygonSet) Cutoffs() []int {
	out := make([]int, len(ps.Polygons))
	for i, cp := range ps.Polygons {
		out[i] = cp.Minutes
	}
	return out
}
