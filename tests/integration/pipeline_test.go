package integration

import (
	"bytes"
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/analysis"
	"github.com/theoremus-urban-solutions/isochrone-analysis/batch"
	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
	"github.com/theoremus-urban-solutions/isochrone-analysis/output"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
	"github.com/theoremus-urban-solutions/isochrone-analysis/tests/helpers"
)

// originLat extracts the latitude from the fromPlace query parameter so the
// fake engine can dispatch per origin.
func originLat(t *testing.T, r *http.Request) float64 {
	t.Helper()
	from := r.URL.Query().Get("fromPlace")
	lat, err := strconv.ParseFloat(strings.SplitN(from, ",", 2)[0], 64)
	if err != nil {
		t.Fatalf("bad fromPlace %q: %v", from, err)
	}
	return lat
}

// newEngine serves canned isochrones for two origins and fails the third
// with a gateway error, plus a plan endpoint with a fixed 30 minute trip.
func newEngine(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/isochrone", func(w http.ResponseWriter, r *http.Request) {
		switch lat := originLat(t, r); {
		case lat < 1: // origin A
			_, _ = w.Write(helpers.FeatureCollection(
				helpers.SquareFeature(0, 0, 1, 1800),
				helpers.SquareFeature(0, 0, 2, 3600),
			))
		case lat < 6: // origin B
			_, _ = w.Write(helpers.FeatureCollection(
				helpers.SquareFeature(5, 5, 1, 1800),
			))
		default: // origin C
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	mux.HandleFunc("/plan", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"plan":{"itineraries":[{"duration":2400},{"duration":1800}]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMatrixPipeline(t *testing.T) {
	srv := newEngine(t)
	client := routing.NewClient(srv.URL, 5*time.Second)

	origins := []points.Point{
		{ID: "A", Lat: 0.5, Lon: 0.5},
		{ID: "B", Lat: 5.5, Lon: 5.5},
		{ID: "C", Lat: 9.0, Lon: 9.0},
	}
	destinations := []points.Point{
		{ID: "d1", Lat: 0.5, Lon: 0.5},
		{ID: "d2", Lat: 1.5, Lon: 1.5},
		{ID: "d3", Lat: 5.5, Lon: 5.5},
	}

	agg := analysis.NewAggregator(client, geometry.NewService())
	matrix, failures, err := agg.Run(context.Background(), origins, destinations, analysis.AggregatorOptions{
		Cutoffs:   []int{30, 60},
		QueryTime: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Runner:    &batch.Runner{Quiet: true},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if matrix.Len() != 2 {
		t.Fatalf("matrix has %d rows, want 2", matrix.Len())
	}
	if got := matrix.Cell("A", "d1"); got != 30 {
		t.Errorf("A->d1 = %v, want 30", got)
	}
	if got := matrix.Cell("A", "d2"); got != 60 {
		t.Errorf("A->d2 = %v, want 60", got)
	}
	if !analysis.IsUnreachable(matrix.Cell("A", "d3")) {
		t.Errorf("A->d3 = %v, want unreachable", matrix.Cell("A", "d3"))
	}
	if got := matrix.Cell("B", "d3"); got != 30 {
		t.Errorf("B->d3 = %v, want 30", got)
	}
	if !analysis.IsUnreachable(matrix.Cell("B", "d1")) {
		t.Errorf("B->d1 = %v, want unreachable", matrix.Cell("B", "d1"))
	}

	if !failures.Contains("C") {
		t.Fatal("origin C must be in the failure set")
	}
	if reason := failures.Reason("C"); !strings.Contains(reason, "HTTP_502") {
		t.Errorf("failure reason = %q, want HTTP_502", reason)
	}
	if got := failures.Report(len(origins)); got != "1 out of 3 origins excluded (33%)" {
		t.Errorf("Report = %q", got)
	}

	var csv bytes.Buffer
	if err := output.WriteMatrixCSV(&csv, matrix); err != nil {
		t.Fatalf("WriteMatrixCSV: %v", err)
	}
	want := "origin,d1,d2,d3\nA,30,60,\nB,,,30\n"
	if csv.String() != want {
		t.Errorf("matrix CSV:\n%s\nwant:\n%s", csv.String(), want)
	}
}

func TestIntersectionPipeline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/isochrone", func(w http.ResponseWriter, r *http.Request) {
		if originLat(t, r) < 1 {
			_, _ = w.Write(helpers.FeatureCollection(helpers.SquareFeature(0, 0, 2, 3600)))
			return
		}
		_, _ = w.Write(helpers.FeatureCollection(helpers.SquareFeature(1, 0, 2, 3600)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := routing.NewClient(srv.URL, 5*time.Second)
	svc := geometry.NewService()
	engine := analysis.NewIntersectionEngine(svc)

	pts := []points.Point{
		{ID: "west", Lat: 0.5, Lon: 1.0},
		{ID: "east", Lat: 1.5, Lon: 2.0},
	}
	for _, p := range pts {
		res, err := client.RequestIsochrone(context.Background(), p, []int{60}, time.Now(), routing.TravelParams{})
		if err != nil {
			t.Fatalf("RequestIsochrone(%s): %v", p.ID, err)
		}
		ps, err := isochrone.Parse(res, p, time.Now(), []int{60}, svc, 0)
		if err != nil {
			t.Fatalf("Parse(%s): %v", p.ID, err)
		}
		engine.Accumulate(ps)
	}

	if engine.Empty() {
		t.Fatal("squares overlap, intersection must not be empty")
	}
	// Squares [0,2]x[0,2] and [1,3]x[0,2] share a 1x2 strip.
	if area := engine.Result().Area(); math.Abs(area-2) > 0.01 {
		t.Errorf("intersection area = %v, want 2", area)
	}
	if area := engine.Union().Area(); math.Abs(area-6) > 0.01 {
		t.Errorf("union area = %v, want 6", area)
	}

	var buf bytes.Buffer
	if err := output.WriteIntersectionGeoJSON(&buf, engine.Result(), engine.Union()); err != nil {
		t.Fatalf("WriteIntersectionGeoJSON: %v", err)
	}
	for _, want := range []string{`"kind":"intersection"`, `"kind":"union"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("GeoJSON output missing %s", want)
		}
	}
}

func TestTripMatrixPipeline(t *testing.T) {
	srv := newEngine(t)
	client := routing.NewClient(srv.URL, 5*time.Second)

	origins := []points.Point{{ID: "A", Lat: 0.5, Lon: 0.5}}
	destinations := []points.Point{
		{ID: "A", Lat: 0.5, Lon: 0.5},
		{ID: "d1", Lat: 0.6, Lon: 0.6},
	}

	matrix, failures, err := analysis.PairMatrix(context.Background(), client, origins, destinations, analysis.PairMatrixOptions{
		QueryTime: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Runner:    &batch.Runner{Quiet: true},
	})
	if err != nil {
		t.Fatalf("PairMatrix: %v", err)
	}
	if failures.Len() != 0 {
		t.Fatalf("unexpected failures: %v", failures.IDs())
	}
	if got := matrix.Cell("A", "A"); got != 0 {
		t.Errorf("A->A = %v, want 0", got)
	}
	// Shortest of the two itineraries, 1800 seconds.
	if got := matrix.Cell("A", "d1"); got != 30 {
		t.Errorf("A->d1 = %v, want 30", got)
	}
}
