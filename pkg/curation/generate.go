package curation

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/evanschultz/instlist/pkg/models"
)

// Generate builds the final list from every institution that is not
// excluded, in tree order, with the substitution pipeline applied to each
// label. The pipeline counters are reset first, so they always describe
// exactly this generation.
func Generate(institutions []models.Institution, excluded ExclusionSet, pipeline *Pipeline) []models.Row {
	if pipeline == nil {
		pipeline = NewPipeline(nil)
	}
	pipeline.Reset()

	rows := make([]models.Row, 0, len(institutions))
	for _, inst := range institutions {
		if excluded.Has(inst.ID) {
			continue
		}
		rows = append(rows, models.Row{
			ID:    inst.ID,
			Label: pipeline.Apply(inst.Label),
		})
	}
	return rows
}

// WriteCSV writes rows as RFC 4180 CSV with LF line endings
func WriteCSV(w io.Writer, rows []models.Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCSV returns the CSV text for rows
func FormatCSV(rows []models.Row) string {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail
	_ = WriteCSV(&buf, rows)
	return buf.String()
}
