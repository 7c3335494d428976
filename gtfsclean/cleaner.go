// Package gtfsclean prepares GTFS feeds for import into the routing engine.
// It removes duplicate trips and, when a study area is given, drops trips
// that never touch it, then deletes the stops and pathways nothing uses
// anymore.
package gtfsclean

import (
	"fmt"
	"log"
	"strings"

	"github.com/ctessum/geom"
	"github.com/patrickbr/gtfsparser"
	"github.com/patrickbr/gtfsparser/gtfs"

	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/internal"
)

// Stats reports what a cleaning pass removed.
type Stats struct {
	TripsBefore     int
	TripsAfter      int
	StopsBefore     int
	StopsAfter      int
	PathwaysRemoved int
}

func (s Stats) String() string {
	return fmt.Sprintf("trips %d -> %d, stops %d -> %d, pathways removed %d",
		s.TripsBefore, s.TripsAfter, s.StopsBefore, s.StopsAfter, s.PathwaysRemoved)
}

// Cleaner holds the cleaning configuration. StudyArea may be empty, in which
// case only duplicate removal runs.
type Cleaner struct {
	StudyArea geom.Polygon

	svc geometry.Service
}

// NewCleaner creates a cleaner. studyArea may be nil.
func NewCleaner(svc geometry.Service, studyArea geom.Polygon) *Cleaner {
	return &Cleaner{StudyArea: studyArea, svc: svc}
}

// Load parses a GTFS feed from path, which may be a zip file or a directory.
// Erroneous rows are dropped rather than failing the whole parse.
func Load(path string) (*gtfsparser.Feed, error) {
	feed := gtfsparser.NewFeed()
	feed.SetParseOpts(gtfsparser.ParseOptions{
		UseDefValueOnError:   true,
		DropErroneous:        true,
		CheckNullCoordinates: false,
		EmptyStringRepl:      "",
		ZipFix:               true,
	})
	if err := feed.Parse(path); err != nil {
		return nil, fmt.Errorf("parsing GTFS feed %s: %w", path, err)
	}
	return feed, nil
}

// Run cleans the feed in place and reports what was removed.
func (c *Cleaner) Run(feed *gtfsparser.Feed) Stats {
	stats := Stats{
		TripsBefore: len(feed.Trips),
		StopsBefore: len(feed.Stops),
	}

	c.removeDuplicateTrips(feed)
	if !c.svc.IsEmpty(c.StudyArea) {
		c.filterToStudyArea(feed)
	}
	stats.PathwaysRemoved = c.removeUnusedStops(feed)
	feed.CleanTransfers()

	stats.TripsAfter = len(feed.Trips)
	stats.StopsAfter = len(feed.Stops)
	log.Printf("GTFS clean finished: %s (%s of trips kept)",
		stats, internal.Percent(stats.TripsAfter, stats.TripsBefore))
	return stats
}

// removeDuplicateTrips drops trips whose route and stop-time sequence are
// identical to one already seen. The kept trip is the first one encountered;
// which duplicate survives does not matter because they are interchangeable.
func (c *Cleaner) removeDuplicateTrips(feed *gtfsparser.Feed) {
	seen := make(map[string]bool, len(feed.Trips))
	for id, t := range feed.Trips {
		key := tripKey(t)
		if seen[key] {
			feed.DeleteTrip(id)
			continue
		}
		seen[key] = true
	}
}

func tripKey(t *gtfs.Trip) string {
	var b strings.Builder
	if t.Route != nil {
		b.WriteString(t.Route.Id)
	}
	for _, st := range t.StopTimes {
		fmt.Fprintf(&b, "|%s@%d-%d",
			st.Stop().Id,
			st.Arrival_time().SecondsSinceMidnight(),
			st.Departure_time().SecondsSinceMidnight())
	}
	return b.String()
}

// filterToStudyArea keeps only trips that serve at least one stop inside the
// study area polygon.
func (c *Cleaner) filterToStudyArea(feed *gtfsparser.Feed) {
	inside := make(map[*gtfs.Stop]bool, len(feed.Stops))
	for _, s := range feed.Stops {
		if c.svc.Contains(c.StudyArea, float64(s.Lon), float64(s.Lat)) {
			inside[s] = true
		}
	}
	for id, t := range feed.Trips {
		touches := false
		for _, st := range t.StopTimes {
			if inside[st.Stop()] {
				touches = true
				break
			}
		}
		if !touches {
			feed.DeleteTrip(id)
		}
	}
}

// removeUnusedStops deletes stops no remaining trip serves, together with
// their pathways. Parent stations of used stops are kept.
func (c *Cleaner) removeUnusedStops(feed *gtfsparser.Feed) int {
	used := make(map[*gtfs.Stop]bool, len(feed.Stops))
	for _, t := range feed.Trips {
		for _, st := range t.StopTimes {
			used[st.Stop()] = true
			if st.Stop().Parent_station != nil {
				used[st.Stop().Parent_station] = true
			}
		}
	}

	pathways := make(map[*gtfs.Stop][]*gtfs.Pathway, len(feed.Stops))
	for _, p := range feed.Pathways {
		pathways[p.From_stop] = append(pathways[p.From_stop], p)
		if p.From_stop != p.To_stop {
			pathways[p.To_stop] = append(pathways[p.To_stop], p)
		}
	}

	// A pathway between two unused stops is indexed under both.
	deleted := make(map[string]bool)
	for _, s := range feed.Stops {
		if used[s] {
			continue
		}
		for _, p := range pathways[s] {
			if deleted[p.Id] {
				continue
			}
			deleted[p.Id] = true
			feed.DeletePathway(p.Id)
		}
		feed.DeleteStop(s.Id)
	}
	return len(deleted)
}
