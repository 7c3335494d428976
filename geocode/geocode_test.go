package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

func postcodesIOServer(t *testing.T, known map[string][2]float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/postcodes/", func(w http.ResponseWriter, r *http.Request) {
		pc := r.URL.Path[len("/postcodes/"):]
		coords, ok := known[pc]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status":404,"error":"Postcode not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":200,"result":{"latitude":` +
			floatString(coords[0]) + `,"longitude":` + floatString(coords[1]) + `}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func nominatimServer(t *testing.T, known map[string][2]float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		pc := r.URL.Query().Get("postalcode")
		coords, ok := known[pc]
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"` + floatString(coords[0]) + `","lon":"` + floatString(coords[1]) + `"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func floatString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func TestLookupPrimary(t *testing.T) {
	srv := postcodesIOServer(t, map[string][2]float64{"BS1 4DJ": {51.45, -2.59}})
	g := New(NewPostcodesIO(srv.URL), nil)

	lat, lon, err := g.Lookup(context.Background(), "BS1 4DJ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lat != 51.45 || lon != -2.59 {
		t.Errorf("got (%v, %v), want (51.45, -2.59)", lat, lon)
	}
}

func TestLookupFallsBack(t *testing.T) {
	primary := postcodesIOServer(t, nil)
	fallback := nominatimServer(t, map[string][2]float64{"BS1 4DJ": {51.5, -2.6}})
	g := New(NewPostcodesIO(primary.URL), NewNominatim(fallback.URL))

	lat, lon, err := g.Lookup(context.Background(), "BS1 4DJ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if lat != 51.5 || lon != -2.6 {
		t.Errorf("got (%v, %v), want (51.5, -2.6)", lat, lon)
	}
}

func TestLookupBothFail(t *testing.T) {
	primary := postcodesIOServer(t, nil)
	fallback := nominatimServer(t, nil)
	g := New(NewPostcodesIO(primary.URL), NewNominatim(fallback.URL))

	if _, _, err := g.Lookup(context.Background(), "ZZ9 9ZZ"); err == nil {
		t.Fatal("expected error when both providers fail")
	}
}

func TestResolveAll(t *testing.T) {
	srv := postcodesIOServer(t, map[string][2]float64{"BS1 4DJ": {51.45, -2.59}})
	g := New(NewPostcodesIO(srv.URL), nil)

	pts := []points.Point{
		{ID: "already", Lat: 50, Lon: -1},
		{ID: "resolvable", Attrs: map[string]string{points.AttrPostcode: "BS1 4DJ"}},
		{ID: "unknown", Attrs: map[string]string{points.AttrPostcode: "ZZ9 9ZZ"}},
	}
	resolved, unresolved, err := g.ResolveAll(context.Background(), pts)
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("got %d resolved points, want 2", len(resolved))
	}
	if resolved[0].Lat != 50 {
		t.Errorf("existing coordinates were modified: %+v", resolved[0])
	}
	if resolved[1].Lat != 51.45 || resolved[1].Lon != -2.59 {
		t.Errorf("resolvable point got (%v, %v)", resolved[1].Lat, resolved[1].Lon)
	}
	if pts[1].HasCoords() {
		t.Error("input slice was mutated")
	}
	if len(unresolved) != 1 || unresolved[0] != "unknown" {
		t.Errorf("unresolved = %v, want [unknown]", unresolved)
	}
}
