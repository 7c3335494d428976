package points

import (
	"errors"
	"fmt"
)

// Well-known attribute keys carried through from input files. A point that
// sets one of these overrides the corresponding batch-level parameter.
const (
	AttrPostcode    = "postcode"
	AttrMode        = "mode"
	AttrMaxDuration = "max_duration"
	AttrTime        = "time"
	AttrDate        = "date"
)

// Point is one named input coordinate. Points are immutable once loaded;
// the geocoder returns resolved copies rather than mutating in place.
type Point struct {
	// ID is the point's name, unique within one point set.
	ID  string
	Lat float64
	Lon float64
	// Attrs carries optional per-row overrides keyed by column name.
	Attrs map[string]string
}

// Attr returns the named attribute or "" when absent.
func (p Point) Attr(key string) string {
	if p.Attrs == nil {
		return ""
	}
	return p.Attrs[key]
}

// HasCoords reports whether the point carries usable coordinates. Points
// loaded with only a postcode have none until geocoded.
func (p Point) HasCoords() bool {
	return p.Lat != 0 || p.Lon != 0
}

// ErrRowOutOfRange is returned by Slice for row selections beyond the
// dataset, a caller mistake that must abort before any network calls.
var ErrRowOutOfRange = errors.New("row selection out of range")

// Slice selects the half-open row range [from, to) from a loaded point set.
// A negative `to` means "to the end".
func Slice(pts []Point, from, to int) ([]Point, error) {
	if to < 0 {
		to = len(pts)
	}
	if from < 0 || from > to || to > len(pts) {
		return nil, fmt.Errorf("rows [%d, %d) of %d: %w", from, to, len(pts), ErrRowOutOfRange)
	}
	return pts[from:to], nil
}
