// Package geocode resolves postcodes to coordinates over HTTP. Lookups go to
// the primary provider first and fall back to the secondary provider when the
// primary fails or does not know the postcode. Geocoding follows the same
// recovery policy as routing: a point that cannot be resolved is reported and
// skipped, never fatal.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// Provider is one postcode lookup backend.
type Provider interface {
	Lookup(ctx context.Context, postcode string) (lat, lon float64, err error)
}

// Geocoder chains a primary and an optional fallback provider.
type Geocoder struct {
	primary  Provider
	fallback Provider
}

// New creates a geocoder. fallback may be nil.
func New(primary, fallback Provider) *Geocoder {
	return &Geocoder{primary: primary, fallback: fallback}
}

// Lookup resolves one postcode, trying the fallback when the primary fails.
func (g *Geocoder) Lookup(ctx context.Context, postcode string) (float64, float64, error) {
	lat, lon, err := g.primary.Lookup(ctx, postcode)
	if err == nil {
		return lat, lon, nil
	}
	if g.fallback == nil {
		return 0, 0, err
	}
	lat, lon, fbErr := g.fallback.Lookup(ctx, postcode)
	if fbErr != nil {
		return 0, 0, fmt.Errorf("primary: %v; fallback: %w", err, fbErr)
	}
	return lat, lon, nil
}

// ResolveAll fills in coordinates for every point that carries a postcode but
// no coordinates yet, returning resolved copies plus the ids that could not
// be resolved. Input points are never mutated.
func (g *Geocoder) ResolveAll(ctx context.Context, pts []points.Point) ([]points.Point, []string, error) {
	out := make([]points.Point, 0, len(pts))
	var unresolved []string
	for _, p := range pts {
		if err := ctx.Err(); err != nil {
			return out, unresolved, err
		}
		if p.HasCoords() || p.Attr(points.AttrPostcode) == "" {
			out = append(out, p)
			continue
		}
		lat, lon, err := g.Lookup(ctx, p.Attr(points.AttrPostcode))
		if err != nil {
			log.Printf("point %s: geocoding %q failed: %v", p.ID, p.Attr(points.AttrPostcode), err)
			unresolved = append(unresolved, p.ID)
			continue
		}
		p.Lat, p.Lon = lat, lon
		out = append(out, p)
	}
	return out, unresolved, nil
}

// PostcodesIO looks up postcodes against a postcodes.io-compatible API.
type PostcodesIO struct {
	BaseURL string
	Client  *http.Client
}

// NewPostcodesIO creates the provider with a bounded request timeout.
func NewPostcodesIO(baseURL string) *PostcodesIO {
	return &PostcodesIO{BaseURL: baseURL, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (p *PostcodesIO) Lookup(ctx context.Context, postcode string) (float64, float64, error) {
	u := p.BaseURL + "/postcodes/" + url.PathEscape(postcode)
	body, err := fetch(ctx, p.Client, u)
	if err != nil {
		return 0, 0, err
	}
	var decoded struct {
		Status int `json:"status"`
		Result *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, 0, fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Status != http.StatusOK || decoded.Result == nil {
		return 0, 0, fmt.Errorf("postcode %q not found", postcode)
	}
	return decoded.Result.Latitude, decoded.Result.Longitude, nil
}

// Nominatim looks up postcodes against a Nominatim-compatible search API,
// typically used as the fallback provider.
type Nominatim struct {
	BaseURL string
	Client  *http.Client
}

// NewNominatim creates the provider with a bounded request timeout.
func NewNominatim(baseURL string) *Nominatim {
	return &Nominatim{BaseURL: baseURL, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (n *Nominatim) Lookup(ctx context.Context, postcode string) (float64, float64, error) {
	q := url.Values{}
	q.Set("postalcode", postcode)
	q.Set("format", "json")
	q.Set("limit", "1")
	body, err := fetch(ctx, n.Client, n.BaseURL+"/search?"+q.Encode())
	if err != nil {
		return 0, 0, err
	}
	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(body, &hits); err != nil {
		return 0, 0, fmt.Errorf("decoding response: %w", err)
	}
	if len(hits) == 0 {
		return 0, 0, fmt.Errorf("postcode %q not found", postcode)
	}
	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q: %w", hits[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q: %w", hits[0].Lon, err)
	}
	return lat, lon, nil
}

func fetch(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, u)
	}
	return body, nil
}
