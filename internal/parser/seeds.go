package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"

	"query-expander/internal/models"
)

var (
	ErrMissingColumn     = errors.New("required column not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// LoadSeeds reads seed queries from the column named column. The format is
// picked from the file extension. A missing column is reported before any
// row is read. A .txt file has no header: every non-empty line is a seed.
func LoadSeeds(filePath, column string) ([]models.SeedQuery, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	var (
		seeds []models.SeedQuery
		err   error
	)
	switch ext {
	case ".csv":
		seeds, err = parseCSV(filePath, column)
	case ".xlsx":
		seeds, err = parseXLSX(filePath, column)
	case ".txt":
		seeds, err = parseText(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load seeds from %s: %w", filePath, err)
	}
	if len(seeds) == 0 {
		log.Warn().Str("file", filePath).Msg("No seed queries found")
	}
	log.Debug().Str("file", filePath).Int("seeds", len(seeds)).Msg("Loaded seed queries")
	return seeds, nil
}

// ReadSeedsCSV reads seeds from delimited text with a header row.
func ReadSeedsCSV(r io.Reader, column string) ([]models.SeedQuery, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return seedsFromRows(rows, column)
}

func parseCSV(filePath, column string) ([]models.SeedQuery, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeedsCSV(f, column)
}

func parseXLSX(filePath, column string) ([]models.SeedQuery, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrMissingColumn, filePath)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			cells = append(cells, cell.String())
		}
		rows = append(rows, cells)
	}
	return seedsFromRows(rows, column)
}

// parseText treats every non-empty line as a seed. There is no header.
func parseText(filePath string) ([]models.SeedQuery, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var seeds []models.SeedQuery
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		seeds = append(seeds, models.SeedQuery{Text: line, Row: i + 1})
	}
	return seeds, nil
}

// seedsFromRows locates column in the header row and collects its non-empty cells.
func seedsFromRows(rows [][]string, column string) ([]models.SeedQuery, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %q (input is empty)", ErrMissingColumn, column)
	}
	idx := -1
	for i, name := range rows[0] {
		if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	var seeds []models.SeedQuery
	for i, row := range rows[1:] {
		if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
			continue
		}
		seeds = append(seeds, models.SeedQuery{Text: row[idx], Row: i + 2})
	}
	return seeds, nil
}
