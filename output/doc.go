// Package output writes the pipeline's artifacts: the reachability matrix
// and failure list as CSV, and polygons as GeoJSON FeatureCollections. The
// same encodings back the periodic checkpoints, written atomically under a
// per-run id so a crashed batch can be inspected or resumed from its last
// flush.
package output
