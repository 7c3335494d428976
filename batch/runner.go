package batch

import (
	"context"
	"log"
	"time"
)

// Outcome tags the result of one item.
type Outcome int

const (
	// Success means the item contributed to the output.
	Success Outcome = iota
	// Failure means the item was recorded as failed; the batch continues.
	Failure
	// Dropped means a caller-side drop condition skipped the item before any
	// work was done.
	Dropped
)

// Summary aggregates one ForEach run.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Dropped   int
	Elapsed   time.Duration
}

// Runner drives a sequential loop. The zero value is usable; set Quiet to
// suppress the per-item progress line.
type Runner struct {
	Quiet bool
	// now is swappable for tests.
	now func() time.Time
}

// ForEach runs body for every item in order, emitting a progress/ETA line
// after each one. It stops early only on context cancellation, returning the
// partial summary together with ctx.Err(). There is no retry: a Failure
// outcome is recorded and the loop moves on.
func ForEach[T any](ctx context.Context, r *Runner, items []T, body func(item T) Outcome) (Summary, error) {
	if r == nil {
		r = &Runner{}
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	summary := Summary{Total: len(items)}
	start := now()
	elapsed := make([]float64, 0, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = now().Sub(start)
			return summary, err
		}

		itemStart := now()
		switch body(item) {
		case Success:
			summary.Succeeded++
		case Failure:
			summary.Failed++
		case Dropped:
			summary.Dropped++
		}
		elapsed = append(elapsed, now().Sub(itemStart).Seconds())

		if !r.Quiet {
			log.Printf("%d out of %d complete; elapsed %.0f seconds; ETA %.0f seconds",
				i+1, len(items), sum(elapsed), eta(elapsed, len(items)))
		}
	}
	summary.Elapsed = now().Sub(start)
	return summary, nil
}

// eta estimates the remaining seconds as mean(elapsed) × total − sum(elapsed).
func eta(elapsed []float64, total int) float64 {
	if len(elapsed) == 0 {
		return 0
	}
	mean := sum(elapsed) / float64(len(elapsed))
	return mean*float64(total) - sum(elapsed)
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
