package points

import (
	"errors"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	in := "name,lat,lon,mode\n" +
		"home,51.45,-2.59,WALK\n" +
		"work,51.46,-2.60,\n"

	pts, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	if pts[0].ID != "home" || pts[0].Lat != 51.45 || pts[0].Lon != -2.59 {
		t.Errorf("unexpected first point: %+v", pts[0])
	}
	if got := pts[0].Attr(AttrMode); got != "WALK" {
		t.Errorf("expected mode attribute WALK, got %q", got)
	}
	if pts[1].Attr(AttrMode) != "" {
		t.Errorf("empty cells should not become attributes")
	}
}

func TestReadCSVHeaderAliases(t *testing.T) {
	in := "id,latitude,lng\np1,1.5,2.5\n"
	pts, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if pts[0].ID != "p1" || pts[0].Lat != 1.5 || pts[0].Lon != 2.5 {
		t.Errorf("unexpected point: %+v", pts[0])
	}
}

func TestReadCSVPostcodeOnly(t *testing.T) {
	in := "name,postcode\nhome,BS1 4DJ\n"
	pts, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if pts[0].HasCoords() {
		t.Errorf("postcode-only point should have no coordinates yet")
	}
	if got := pts[0].Attr(AttrPostcode); got != "BS1 4DJ" {
		t.Errorf("expected postcode attribute, got %q", got)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"no name", "lat,lon\n1,2\n"},
		{"no coords or postcode", "name,comment\nhome,hi\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			if !errors.Is(err, ErrMissingColumn) {
				t.Errorf("expected ErrMissingColumn, got %v", err)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	pts := []Point{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	got, err := Slice(pts, 1, -1)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" {
		t.Errorf("unexpected slice: %+v", got)
	}

	if _, err := Slice(pts, 0, 4); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("expected ErrRowOutOfRange, got %v", err)
	}
	if _, err := Slice(pts, 2, 1); !errors.Is(err, ErrRowOutOfRange) {
		t.Errorf("expected ErrRowOutOfRange for inverted range, got %v", err)
	}
}
