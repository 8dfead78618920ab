package xlsql

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xlsql/xlsql/domain/model"
)

// appendSheet writes result as a new sheet named name at the end of the workbook at path.
// The header row uses columns, which may differ from result.Columns after deduplication.
// Existing sheets are left untouched.
func appendSheet(path, name string, columns []string, result *model.QueryResult) error {
	xlsxFile, err := excelize.OpenFile(path)
	if err != nil {
		return &ExportIOError{Path: path, Err: err}
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	for _, existing := range xlsxFile.GetSheetList() {
		if strings.EqualFold(existing, name) {
			return &ExportValidationError{Name: name, Rule: RuleDuplicate, Reason: "the workbook already has a sheet with this name"}
		}
	}

	if _, err := xlsxFile.NewSheet(name); err != nil {
		return &ExportIOError{Path: path, Err: fmt.Errorf("failed to create sheet: %w", err)}
	}

	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := xlsxFile.SetSheetRow(name, "A1", &header); err != nil {
		return &ExportIOError{Path: path, Err: err}
	}
	if style, err := xlsxFile.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil && len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = xlsxFile.SetCellStyle(name, "A1", last, style)
	}

	for i, row := range result.Rows {
		for j, v := range row {
			// NULL leaves the cell blank
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return &ExportIOError{Path: path, Err: err}
			}
			if err := xlsxFile.SetCellValue(name, cell, cellValue(v)); err != nil {
				return &ExportIOError{Path: path, Err: err}
			}
		}
	}

	if err := xlsxFile.Save(); err != nil {
		return &ExportIOError{Path: path, Err: fmt.Errorf("failed to save workbook: %w", err)}
	}
	return nil
}

// cellValue converts an engine value to a cell value. Numbers stay numeric.
func cellValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
