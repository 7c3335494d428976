// Package analysis contains the isochrone aggregation pipeline: per-origin
// reachability rows, the multi-origin reachability matrix, the progressive
// polygon intersection engine, and the failure bookkeeping that keeps a batch
// running when individual origins produce nothing usable.
//
// All travel times in this package are minutes. The seconds-to-minutes
// conversion happens exactly once, when the routing response is parsed;
// nothing here divides again.
package analysis
