// Package points holds the input point model and its loaders. Origins and
// destinations arrive as CSV or GeoJSON point files; both loaders produce the
// same ordered []Point. The package also provides an rtreego-backed spatial
// index used to prefilter destinations by bounding box before the exact
// point-in-polygon tests run.
package points
