package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"query-expander/internal/helper"
	"query-expander/internal/models"
)

var ErrUnsupportedOutput = errors.New("unsupported output format")

// Save writes records to path as csv or xlsx, by extension. Parent folders are
// created as needed.
func Save(path string, records []models.ExpandedRecord) error {
	if err := helper.CreateFolder(filepath.Dir(path)); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(f, records); err != nil {
			f.Close()
			return fmt.Errorf("failed to write csv: %w", err)
		}
		return f.Close()
	case ".xlsx":
		return WriteXLSX(path, records)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOutput, ext)
	}
}

// Load reads a file written by Save.
func Load(path string) ([]models.ExpandedRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, ext)
	}
}

// SaveHTML writes the HTML report for result with the given preview sample.
func SaveHTML(path string, result *models.ExpansionResult, sample []models.ExpandedRecord) error {
	if err := helper.CreateFolder(filepath.Dir(path)); err != nil {
		return err
	}
	page, err := RenderHTML(result, sample)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return os.WriteFile(path, page, 0o644)
}
