package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// CodeOK marks a successful engine response. Any other code is an
// engine-defined or transport-level failure the caller records and skips.
const CodeOK = "OK"

// RawResult is one routing engine response: an error code plus, when the
// code is OK, the opaque payload for the parser.
type RawResult struct {
	Code string
	Body []byte
}

// OK reports whether the engine produced a usable payload.
func (r RawResult) OK() bool {
	return r.Code == CodeOK
}

// Client issues parameterized requests to the routing engine. One Client is
// safe to reuse across a whole batch; each call blocks until the engine
// responds or the per-request timeout fires.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a routing client. timeout bounds each individual request,
// independent of the batch lifetime.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestIsochrone asks for one polygon per cutoff (minutes) around the
// origin at the given query time. Transport and service failures come back in
// RawResult.Code; the error return is reserved for context cancellation and
// malformed input.
func (c *Client) RequestIsochrone(ctx context.Context, origin points.Point, cutoffsMinutes []int, queryTime time.Time, params TravelParams) (RawResult, error) {
	q := c.baseQuery(origin, queryTime, params)
	for _, m := range params.limitCutoffs(cutoffsMinutes) {
		q.Add("cutoffSec", strconv.Itoa(m*60))
	}
	return c.get(ctx, "/isochrone", q)
}

// RequestTrip asks for point-to-point itineraries between origin and
// destination at the given query time.
func (c *Client) RequestTrip(ctx context.Context, origin, dest points.Point, queryTime time.Time, params TravelParams) (RawResult, error) {
	q := c.baseQuery(origin, queryTime, params)
	q.Set("toPlace", fmt.Sprintf("%f,%f", dest.Lat, dest.Lon))
	return c.get(ctx, "/plan", q)
}

func (c *Client) baseQuery(origin points.Point, queryTime time.Time, params TravelParams) url.Values {
	q := url.Values{}
	q.Set("fromPlace", fmt.Sprintf("%f,%f", origin.Lat, origin.Lon))
	q.Set("date", queryTime.Format("2006-01-02"))
	q.Set("time", queryTime.Format("15:04"))
	q.Set("mode", params.modeList())
	q.Set("maxWalkDistance", strconv.FormatFloat(params.MaxWalkDistance, 'f', -1, 64))
	q.Set("walkSpeed", strconv.FormatFloat(params.WalkSpeed, 'f', -1, 64))
	if params.BikeSpeed > 0 {
		q.Set("bikeSpeed", strconv.FormatFloat(params.BikeSpeed, 'f', -1, 64))
	}
	q.Set("walkReluctance", strconv.FormatFloat(params.WalkReluctance, 'f', -1, 64))
	q.Set("minTransferTime", strconv.Itoa(params.MinTransferTime))
	q.Set("maxTransfers", strconv.Itoa(params.MaxTransfers))
	q.Set("wheelchair", strconv.FormatBool(params.Wheelchair))
	q.Set("arriveBy", strconv.FormatBool(params.ArriveBy))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (RawResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return RawResult{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return RawResult{}, ctx.Err()
		}
		return RawResult{Code: "UNREACHABLE"}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResult{Code: "READ_FAILED"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return RawResult{Code: fmt.Sprintf("HTTP_%d", resp.StatusCode), Body: body}, nil
	}
	if code, ok := engineError(body); ok {
		return RawResult{Code: code, Body: body}, nil
	}
	return RawResult{Code: CodeOK, Body: body}, nil
}

// engineError detects the engine's in-band error envelope on 200 responses.
func engineError(body []byte) (string, bool) {
	var probe struct {
		Error *struct {
			ID  int    `json:"id"`
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Error == nil {
		return "", false
	}
	if probe.Error.ID != 0 {
		return fmt.Sprintf("ENGINE_%d", probe.Error.ID), true
	}
	return "ENGINE_ERROR", true
}

// TripDuration extracts the shortest itinerary duration from a point-to-point
// plan payload. The engine reports seconds; the caller owns unit conversion.
func TripDuration(body []byte) (seconds int64, err error) {
	var plan struct {
		Plan struct {
			Itineraries []struct {
				Duration int64 `json:"duration"`
			} `json:"itineraries"`
		} `json:"plan"`
	}
	if err := json.Unmarshal(body, &plan); err != nil {
		return 0, fmt.Errorf("decoding plan: %w", err)
	}
	if len(plan.Plan.Itineraries) == 0 {
		return 0, fmt.Errorf("plan contains no itineraries")
	}
	best := plan.Plan.Itineraries[0].Duration
	for _, it := range plan.Plan.Itineraries[1:] {
		if it.Duration < best {
			best = it.Duration
		}
	}
	return best, nil
}
