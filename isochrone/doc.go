// Package isochrone turns raw routing engine responses into structured
// per-origin polygon sets. One PolygonSet holds the (cutoff, polygon) pairs
// for a single origin at a single query time, already simplified for the
// set operations downstream.
//
// The engine may legitimately return fewer polygons than requested cutoffs
// (a cutoff can enclose no reachable area at all); parsing tolerates that and
// records the missing cutoffs for diagnostics. Only a malformed or empty
// payload is a ParseError, which classifies the whole origin as failed.
package isochrone
