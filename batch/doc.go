// Package batch drives sequential loops over many items with progress and
// ETA messaging. Batches against a live routing service can run for hours
// across thousands of blocking calls, so the runner checks for cancellation
// between items and keeps a running elapsed-time list to estimate time
// remaining.
//
// The runner never decides what to skip: drop conditions (identical
// origin/destination, already-processed pairs, distance prefiltering) are
// surfaced by callers through the helpers in this package and reported as
// Dropped outcomes.
package batch
