package batch

import (
	"github.com/umahmood/haversine"

	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// SamePlace reports whether origin and destination are the same point, either
// by id or by identical coordinates. Such pairs are dropped before any
// request is issued.
func SamePlace(a, b points.Point) bool {
	if a.ID == b.ID {
		return true
	}
	return a.Lat == b.Lat && a.Lon == b.Lon
}

// FartherThanKM reports whether two points are more than maxKM apart in
// straight-line distance. A non-positive maxKM disables the filter. Used to
// save API calls on large datasets.
func FartherThanKM(a, b points.Point, maxKM float64) bool {
	if maxKM <= 0 {
		return false
	}
	_, km := haversine.Distance(
		haversine.Coord{Lat: a.Lat, Lon: a.Lon},
		haversine.Coord{Lat: b.Lat, Lon: b.Lon},
	)
	return km > maxKM
}

// PairSet remembers (origin, destination) pairs already processed in this
// run so duplicate calls can be dropped.
type PairSet struct {
	seen map[[2]string]struct{}
}

// NewPairSet creates an empty pair set.
func NewPairSet() *PairSet {
	return &PairSet{seen: make(map[[2]string]struct{})}
}

// Seen records the pair and reports whether it was already present.
func (s *PairSet) Seen(originID, destID string) bool {
	key := [2]string{originID, destID}
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	return false
}
