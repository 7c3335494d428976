package analysis

import (
	"math"
)

// Unreachable is the out-of-band sentinel for a destination no cutoff
// polygon contains. Output writers render it as a null marker, never as zero.
var Unreachable = math.Inf(1)

// IsUnreachable reports whether a matrix cell holds the sentinel.
func IsUnreachable(minutes float64) bool {
	return math.IsInf(minutes, 1) || math.IsNaN(minutes)
}

// ReachabilityRow maps destination id to the minimum cutoff (minutes) at
// which that destination becomes reachable from one origin.
type ReachabilityRow map[string]float64

// ReachabilityMatrix is the sparse origin × destination table of minimum
// travel times in minutes. Rows are merged in, keyed by origin id; column
// names are destination names. It grows incrementally as origins complete.
type ReachabilityMatrix struct {
	// Destinations fixes the column order.
	Destinations []string
	// OriginOrder preserves insertion order for deterministic output.
	OriginOrder []string
	Rows        map[string]ReachabilityRow
}

// NewMatrix creates an empty matrix with the given column names.
func NewMatrix(destinationIDs []string) *ReachabilityMatrix {
	cols := make([]string, len(destinationIDs))
	copy(cols, destinationIDs)
	return &ReachabilityMatrix{
		Destinations: cols,
		Rows:         make(map[string]ReachabilityRow),
	}
}

// Merge adds one origin's row. Merging the same origin twice replaces the
// earlier row without duplicating it in the order.
func (m *ReachabilityMatrix) Merge(originID string, row ReachabilityRow) {
	if _, exists := m.Rows[originID]; !exists {
		m.OriginOrder = append(m.OriginOrder, originID)
	}
	m.Rows[originID] = row
}

// Len returns the number of origin rows.
func (m *ReachabilityMatrix) Len() int {
	return len(m.Rows)
}

// Cell returns the minutes for one origin/destination, or the Unreachable
// sentinel when either key is absent.
func (m *ReachabilityMatrix) Cell(originID, destID string) float64 {
	row, ok := m.Rows[originID]
	if !ok {
		return Unreachable
	}
	v, ok := row[destID]
	if !ok {
		return Unreachable
	}
	return v
}
