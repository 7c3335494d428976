package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theoremus-urban-solutions/isochrone-analysis/analysis"
	"github.com/theoremus-urban-solutions/isochrone-analysis/points"
)

// WriteMatrixCSV renders the matrix with origins as rows and destination
// names as columns. Unreachable cells become empty fields, the CSV null
// marker; they are never written as zero.
func WriteMatrixCSV(w io.Writer, m *analysis.ReachabilityMatrix) error {
	cw := csv.NewWriter(w)

	header := append([]string{"origin"}, m.Destinations...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, originID := range m.OriginOrder {
		rec := make([]string, 0, len(header))
		rec = append(rec, originID)
		for _, destID := range m.Destinations {
			v := m.Cell(originID, destID)
			if analysis.IsUnreachable(v) {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %s: %w", originID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailuresCSV renders the excluded origins with their reasons.
func WriteFailuresCSV(w io.Writer, fs *analysis.FailureSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"origin", "reason"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, id := range fs.IDs() {
		if err := cw.Write([]string{id, fs.Reason(id)}); err != nil {
			return fmt.Errorf("writing row %s: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePointsCSV renders points in the same column layout the loaders accept,
// so a geocoded file can feed straight back into a matrix run.
func WritePointsCSV(w io.Writer, pts []points.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "lat", "lon", "postcode"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, p := range pts {
		rec := []string{
			p.ID,
			strconv.FormatFloat(p.Lat, 'f', -1, 64),
			strconv.FormatFloat(p.Lon, 'f', -1, 64),
			p.Attr(points.AttrPostcode),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
