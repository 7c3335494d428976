package points

import (
	"github.com/dhconnelly/rtreego"
)

const (
	indexTolerance = 0.0001
	minChildren    = 2
	maxChildren    = 32
	dimensions     = 2
)

type spatialItem struct {
	point Point
	rect  *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is an R-tree over a point set, keyed by (lon, lat). It narrows the
// candidate set for point-in-polygon tests to points inside a polygon's
// bounding box; the exact test still decides membership.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over the given points. Points without coordinates
// are skipped.
func NewIndex(pts []Point) *Index {
	ix := &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, p := range pts {
		if !p.HasCoords() {
			continue
		}
		loc := rtreego.Point{p.Lon, p.Lat}
		ix.tree.Insert(&spatialItem{point: p, rect: loc.ToRect(indexTolerance)})
		ix.size++
	}
	return ix
}

// WithinBounds returns all indexed points whose location intersects the given
// bounding box (degrees, X=lon, Y=lat).
func (ix *Index) WithinBounds(minLon, minLat, maxLon, maxLat float64) []Point {
	w, h := maxLon-minLon, maxLat-minLat
	if w < indexTolerance {
		w = indexTolerance
	}
	if h < indexTolerance {
		h = indexTolerance
	}
	rect, err := rtreego.NewRect(rtreego.Point{minLon, minLat}, []float64{w, h})
	if err != nil {
		return nil
	}
	hits := ix.tree.SearchIntersect(rect)
	out := make([]Point, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*spatialItem).point)
	}
	return out
}

// Size returns the number of indexed points.
func (ix *Index) Size() int {
	return ix.size
}
