// Package routing is the HTTP client for the external trip-planning engine.
// It only knows the request/response contract: isochrone queries return a
// GeoJSON FeatureCollection with one polygon feature per achieved cutoff
// (the "time" property carries the cutoff in seconds), point-to-point queries
// return a JSON plan with itinerary durations.
//
// Service and transport failures are not errors in the Go sense: they come
// back as a RawResult with a non-OK code so batch callers can record the item
// as failed and continue. The error return is reserved for caller mistakes
// and context cancellation.
package routing
