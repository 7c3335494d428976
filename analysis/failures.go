package analysis

import (
	"fmt"
	"log"

	"github.com/theoremus-urban-solutions/isochrone-analysis/internal"
)

// FailureSet collects origins for which no polygon could be produced. Members
// are excluded from every aggregate and must be reported at the end; silent
// partial failure is not acceptable.
type FailureSet struct {
	order   []string
	reasons map[string]string
}

// NewFailureSet creates an empty failure set.
func NewFailureSet() *FailureSet {
	return &FailureSet{reasons: make(map[string]string)}
}

// Add records a failed origin with the reason it was excluded.
func (fs *FailureSet) Add(originID, reason string) {
	if _, ok := fs.reasons[originID]; !ok {
		fs.order = append(fs.order, originID)
	}
	fs.reasons[originID] = reason
}

// Contains reports whether the origin is excluded.
func (fs *FailureSet) Contains(originID string) bool {
	_, ok := fs.reasons[originID]
	return ok
}

// Len returns the number of excluded origins.
func (fs *FailureSet) Len() int {
	return len(fs.order)
}

// IDs returns excluded origin ids in insertion order.
func (fs *FailureSet) IDs() []string {
	out := make([]string, len(fs.order))
	copy(out, fs.order)
	return out
}

// Reason returns the recorded reason for an excluded origin.
func (fs *FailureSet) Reason(originID string) string {
	return fs.reasons[originID]
}

// Report formats the end-of-run exclusion summary, e.g.
// "1 out of 2 origins excluded (50%)".
func (fs *FailureSet) Report(totalOrigins int) string {
	return fmt.Sprintf("%d out of %d origins excluded (%s)",
		fs.Len(), totalOrigins, internal.Percent(fs.Len(), totalOrigins))
}

// LogExclusion emits the running diagnostic for one newly failed origin,
// including the adjusted total ("now X not Y").
func (fs *FailureSet) LogExclusion(originID, reason string, totalOrigins int) {
	log.Printf("origin %s excluded (%s); %d excluded so far, now %d not %d origins",
		originID, reason, fs.Len(), totalOrigins-fs.Len(), totalOrigins)
}
