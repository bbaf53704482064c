package report

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"query-expander/internal/models"
)

const (
	expansionsSheet = "Expansions"
	summarySheet    = "Summary"
)

// WriteXLSX saves records to an Expansions sheet and the intent counts, with a
// column chart, to a Summary sheet.
func WriteXLSX(path string, records []models.ExpandedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), expansionsSheet); err != nil {
		return err
	}
	if err := setRow(f, expansionsSheet, 1, models.Columns); err != nil {
		return err
	}
	for i, r := range records {
		if err := setRow(f, expansionsSheet, i+2, recordRow(r)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(expansionsSheet, "A", "C", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(expansionsSheet, "D", "D", 70); err != nil {
		return err
	}

	if err := writeSummary(f, IntentCounts(records)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	log.Debug().Str("path", path).Int("rows", len(records)).Msg("Saved workbook")
	return nil
}

// ReadXLSX reads the Expansions sheet of a workbook written by WriteXLSX.
func ReadXLSX(path string) ([]models.ExpandedRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(expansionsSheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || !slices.Equal(rows[0], models.Columns) {
		return nil, ErrBadHeader
	}
	records := make([]models.ExpandedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowRecord(row))
	}
	return records, nil
}

func writeSummary(f *excelize.File, counts []IntentCount) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, []string{models.ColumnIntent, "Count"}); err != nil {
		return err
	}
	for i, c := range counts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]any{c.Intent, c.Count}); err != nil {
			return err
		}
	}
	if len(counts) == 0 {
		return nil
	}

	last := len(counts) + 1
	return f.AddChart(summarySheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", summarySheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", summarySheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", summarySheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Intent Type Distribution"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
