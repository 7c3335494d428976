package routing

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/config"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// TravelParams is the full travel-parameter set sent with every query.
type TravelParams struct {
	// Modes is the transport mode set, e.g. WALK,TRANSIT.
	Modes           []string
	MaxWalkDistance float64
	// WalkSpeed and BikeSpeed are in m/s.
	WalkSpeed       float64
	BikeSpeed       float64
	WalkReluctance  float64
	MinTransferTime int
	MaxTransfers    int
	Wheelchair      bool
	ArriveBy        bool
	// MaxDurationMin caps the isochrone cutoffs for one point. Zero means
	// no cap; set via the point's max_duration attribute.
	MaxDurationMin int
}

// ParamsFromConfig builds the batch-level default travel parameters.
func ParamsFromConfig(cfg config.RoutingConfig) TravelParams {
	return TravelParams{
		Modes:           cfg.Modes,
		MaxWalkDistance: cfg.MaxWalkDistance,
		WalkSpeed:       cfg.WalkSpeed,
		BikeSpeed:       cfg.BikeSpeed,
		WalkReluctance:  cfg.WalkReluctance,
		MinTransferTime: cfg.MinTransferTime,
		MaxTransfers:    cfg.MaxTransfers,
		Wheelchair:      cfg.Wheelchair,
		ArriveBy:        cfg.ArriveBy,
	}
}

// ForPoint overlays a point's per-row overrides onto the batch defaults.
// The mode and max_duration attributes are honored; a malformed value is
// reported and the batch default kept.
func (p TravelParams) ForPoint(pt points.Point) TravelParams {
	if mode := pt.Attr(points.AttrMode); mode != "" {
		p.Modes = strings.Split(mode, ",")
	}
	if v := pt.Attr(points.AttrMaxDuration); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			log.Printf("point %s: ignoring max_duration %q (want positive minutes)", pt.ID, v)
		} else {
			p.MaxDurationMin = minutes
		}
	}
	return p
}

// QueryTimeFor overlays a point's time and date attributes onto the batch
// query time. Each attribute replaces only its own component, so a point may
// carry a departure time, a date, or both; a malformed value is reported and
// the batch value kept.
func QueryTimeFor(pt points.Point, batch time.Time) time.Time {
	if d := pt.Attr(points.AttrDate); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, batch.Location())
		if err != nil {
			log.Printf("point %s: ignoring date %q (want YYYY-MM-DD)", pt.ID, d)
		} else {
			batch = time.Date(parsed.Year(), parsed.Month(), parsed.Day(),
				batch.Hour(), batch.Minute(), 0, 0, batch.Location())
		}
	}
	if tm := pt.Attr(points.AttrTime); tm != "" {
		parsed, err := time.Parse("15:04", tm)
		if err != nil {
			log.Printf("point %s: ignoring time %q (want HH:MM)", pt.ID, tm)
		} else {
			batch = time.Date(batch.Year(), batch.Month(), batch.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, batch.Location())
		}
	}
	return batch
}

// limitCutoffs drops requested cutoffs beyond the per-point maximum
// duration. A maximum below every requested cutoff becomes the single
// cutoff, so a capped point still produces a polygon.
func (p TravelParams) limitCutoffs(minutes []int) []int {
	if p.MaxDurationMin <= 0 {
		return minutes
	}
	out := make([]int, 0, len(minutes))
	for _, m := range minutes {
		if m <= p.MaxDurationMin {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		out = append(out, p.MaxDurationMin)
	}
	return out
}

func (p TravelParams) modeList() string {
	return strings.Join(p.Modes, ",")
}
