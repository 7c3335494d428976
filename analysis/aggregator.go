package analysis

import (
	"context"
	"log"
	"time"

	"github.com/theoremus-urban-solutions/isochrone-analysis/batch"
	"github.com/theoremus-urban-solutions/isochrone-analysis/geometry"
	"github.com/theoremus-urban-solutions/isochrone-analysis/isochrone"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
	"github.com/theoremus-urban-solutions/isochrone-analysis/routing"
)

// IsochroneRequester is the slice of the routing client the aggregator needs.
type IsochroneRequester interface {
	RequestIsochrone(ctx context.Context, origin points.Point, cutoffsMinutes []int, queryTime time.Time, params routing.TravelParams) (routing.RawResult, error)
}

// CheckpointWriter persists the matrix-so-far and failure list so a crash
// loses at most one checkpoint interval of work.
type CheckpointWriter interface {
	WriteCheckpoint(m *ReachabilityMatrix, failures *FailureSet) error
}

// AggregatorOptions configures one matrix run.
type AggregatorOptions struct {
	Cutoffs           []int
	QueryTime         time.Time
	Params            routing.TravelParams
	SimplifyTolerance float64
	// CheckpointEvery flushes after this many successful origins; zero
	// disables checkpointing. Checkpoint may be nil only when disabled.
	CheckpointEvery int
	Checkpoint      CheckpointWriter
	Runner          *batch.Runner
}

// MultiOriginAggregator drives the per-origin pipeline (request, parse,
// classify) across many origins and merges the rows into one matrix. Failed
// origins are recorded and skipped; no failure of a single origin aborts the
// run.
type MultiOriginAggregator struct {
	client IsochroneRequester
	svc    geometry.Service
}

// NewAggregator creates an aggregator on top of a routing client.
func NewAggregator(client IsochroneRequester, svc geometry.Service) *MultiOriginAggregator {
	return &MultiOriginAggregator{client: client, svc: svc}
}

// Run processes every origin in order and returns the merged matrix plus the
// failure set. The only error it returns is context cancellation; service
// and parse failures are absorbed into the failure set. The partial matrix
// accumulated before cancellation is returned alongside the error.
func (a *MultiOriginAggregator) Run(ctx context.Context, origins, destinations []points.Point, opts AggregatorOptions) (*ReachabilityMatrix, *FailureSet, error) {
	destIDs := make([]string, len(destinations))
	for i, d := range destinations {
		destIDs[i] = d.ID
	}
	matrix := NewMatrix(destIDs)
	failures := NewFailureSet()
	builder := NewRowBuilder(a.svc, destinations, points.NewIndex(destinations))

	tolerance := opts.SimplifyTolerance
	if tolerance == 0 {
		tolerance = isochrone.DefaultSimplifyTolerance
	}

	successes := 0
	summary, err := batch.ForEach(ctx, opts.Runner, origins, func(origin points.Point) batch.Outcome {
		queryTime := routing.QueryTimeFor(origin, opts.QueryTime)
		res, reqErr := a.client.RequestIsochrone(ctx, origin, opts.Cutoffs, queryTime, opts.Params.ForPoint(origin))
		if reqErr != nil {
			if ctx.Err() != nil {
				// Cancellation; ForEach stops before the next item.
				return batch.Failure
			}
			failures.Add(origin.ID, reqErr.Error())
			failures.LogExclusion(origin.ID, reqErr.Error(), len(origins))
			return batch.Failure
		}

		ps, parseErr := isochrone.Parse(res, origin, queryTime, opts.Cutoffs, a.svc, tolerance)
		if parseErr != nil {
			failures.Add(origin.ID, parseErr.Error())
			failures.LogExclusion(origin.ID, parseErr.Error(), len(origins))
			return batch.Failure
		}
		if len(ps.MissingCutoffs) > 0 {
			log.Printf("origin %s: no polygon for cutoffs %v (achieved %v)",
				origin.ID, ps.MissingCutoffs, ps.Cutoffs())
		}

		matrix.Merge(origin.ID, builder.BuildRow(ps))
		successes++
		if opts.CheckpointEvery > 0 && successes%opts.CheckpointEvery == 0 && opts.Checkpoint != nil {
			if err := opts.Checkpoint.WriteCheckpoint(matrix, failures); err != nil {
				log.Printf("checkpoint after %d origins failed: %v", successes, err)
			}
		}
		return batch.Success
	})

	if err != nil {
		return matrix, failures, err
	}

	log.Printf("%s; matrix has %d rows x %d columns (elapsed %s)",
		failures.Report(len(origins)), matrix.Len(), len(matrix.Destinations), summary.Elapsed.Round(time.Second))
	return matrix, failures, nil
}
