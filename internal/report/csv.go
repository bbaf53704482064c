package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"query-expander/internal/models"
)

var ErrBadHeader = errors.New("unexpected header")

// WriteCSV writes the header and one row per record, in order.
func WriteCSV(w io.Writer, records []models.ExpandedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a file produced by WriteCSV.
func ReadCSV(r io.Reader) ([]models.ExpandedRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.Columns)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !slices.Equal(header, models.Columns) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}
	var records []models.ExpandedRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rowRecord(row))
	}
}

func recordRow(r models.ExpandedRecord) []string {
	return []string{r.Seed, r.Query, r.Intent, r.Relationship}
}

func rowRecord(row []string) models.ExpandedRecord {
	cells := make([]string, len(models.Columns))
	copy(cells, row)
	return models.ExpandedRecord{Seed: cells[0], Query: cells[1], Intent: cells[2], Relationship: cells[3]}
}
