// Package helpers holds fixture builders shared by package and integration
// tests: canned GeoJSON isochrone payloads shaped like real routing engine
// responses.
package helpers

import (
	"fmt"
	"strings"

	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
)

// SquareFeature builds one GeoJSON polygon feature covering a side×side
// square anchored at (x, y), tagged with the cutoff in seconds the way the
// routing engine tags achieved cutoffs.
func SquareFeature(x, y, side float64, seconds int) string {
	x2, y2 := x+side, y+side
	return fmt.Sprintf(`{
		"type": "Feature",
		"properties": {"time": %d},
		"geometry": {"type": "Polygon", "coordinates": [[
			[%f, %f], [%f, %f], [%f, %f], [%f, %f], [%f, %f]
		]]}
	}`, seconds, x, y, x2, y, x2, y2, x, y2, x, y)
}

// FeatureCollection wraps features into a FeatureCollection payload.
func FeatureCollection(features ...string) []byte {
	return []byte(`{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`)
}

// OKResult wraps features into a successful RawResult.
func OKResult(features ...string) routing.RawResult {
	return routing.RawResult{Code: routing.CodeOK, Body: FeatureCollection(features...)}
}

// FailedResult simulates a routing service failure.
func FailedResult(code string) routing.RawResult {
	return routing.RawResult{Code: code}
}
