package analysis

import (
	"context"
	"log"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/batch"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
)

// TripRequester is the slice of the routing client the pair matrix needs.
type TripRequester interface {
	RequestTrip(ctx context.Context, origin, dest points.Point, queryTime time.Time, params routing.TravelParams) (routing.RawResult, error)
}

// PairMatrixOptions configures one point-to-point matrix run.
type PairMatrixOptions struct {
	QueryTime time.Time
	Params    routing.TravelParams
	// MaxPairDistanceKM drops pairs farther apart than this straight-line
	// distance before any request. Zero disables the filter.
	MaxPairDistanceKM float64
	CheckpointEvery   int
	Checkpoint        CheckpointWriter
	Runner            *batch.Runner
}

type pair struct {
	origin, dest points.Point
}

// PairMatrix builds an origin × destination travel-time matrix from
// point-to-point plan queries, one blocking request per surviving pair.
// Origin-equals-destination pairs, duplicate pairs, and pairs beyond the
// distance threshold are dropped without a request. Any pair whose request
// or plan fails marks the cell unreachable and is recorded in the failure
// set keyed as "origin→destination".
func PairMatrix(ctx context.Context, client TripRequester, origins, destinations []points.Point, opts PairMatrixOptions) (*ReachabilityMatrix, *FailureSet, error) {
	destIDs := make([]string, len(destinations))
	for i, d := range destinations {
		destIDs[i] = d.ID
	}
	matrix := NewMatrix(destIDs)
	failures := NewFailureSet()
	seen := batch.NewPairSet()

	pairs := make([]pair, 0, len(origins)*len(destinations))
	for _, o := range origins {
		matrix.Merge(o.ID, make(ReachabilityRow, len(destinations)))
		for _, d := range destinations {
			pairs = append(pairs, pair{origin: o, dest: d})
		}
	}

	successes := 0
	_, err := batch.ForEach(ctx, opts.Runner, pairs, func(p pair) batch.Outcome {
		row := matrix.Rows[p.origin.ID]
		if batch.SamePlace(p.origin, p.dest) {
			row[p.dest.ID] = 0
			return batch.Dropped
		}
		if seen.Seen(p.origin.ID, p.dest.ID) {
			return batch.Dropped
		}
		if batch.FartherThanKM(p.origin, p.dest, opts.MaxPairDistanceKM) {
			row[p.dest.ID] = Unreachable
			return batch.Dropped
		}

		res, reqErr := client.RequestTrip(ctx, p.origin, p.dest,
			routing.QueryTimeFor(p.origin, opts.QueryTime), opts.Params.ForPoint(p.origin))
		if reqErr != nil {
			return batch.Failure
		}
		if !res.OK() {
			row[p.dest.ID] = Unreachable
			failures.Add(p.origin.ID+"→"+p.dest.ID, res.Code)
			return batch.Failure
		}
		seconds, planErr := routing.TripDuration(res.Body)
		if planErr != nil {
			row[p.dest.ID] = Unreachable
			failures.Add(p.origin.ID+"→"+p.dest.ID, planErr.Error())
			return batch.Failure
		}

		row[p.dest.ID] = float64(seconds) / 60
		successes++
		if opts.CheckpointEvery > 0 && successes%opts.CheckpointEvery == 0 && opts.Checkpoint != nil {
			if err := opts.Checkpoint.WriteCheckpoint(matrix, failures); err != nil {
				log.Printf("checkpoint after %d pairs failed: %v", successes, err)
			}
		}
		return batch.Success
	})
	return matrix, failures, err
}
