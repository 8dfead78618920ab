package xlsql

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xlsql/xlsql/domain/model"
)

// defaultTableName is used when a source yields no usable name.
const defaultTableName = "table"

// sheet is one page of raw text cells read from a source file.
// The first row is the header; the rest are data rows.
type sheet struct {
	// name is the sheet name as the source reports it.
	name string
	// rows holds the raw cells, possibly ragged.
	rows [][]string
}

// isEmpty reports whether the sheet has no cells at all.
func (s *sheet) isEmpty() bool {
	for _, row := range s.rows {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// width returns the width of the widest row.
func (s *sheet) width() int {
	width := 0
	for _, row := range s.rows {
		width = max(width, len(row))
	}
	return width
}

// header returns the normalized header of the sheet.
func (s *sheet) header() model.Header {
	var raw []string
	if len(s.rows) > 0 {
		raw = s.rows[0]
	}
	return normalizeHeader(raw, s.width())
}

// records returns the data rows padded to width, with blank cells as NULL.
func (s *sheet) records(width int) [][]any {
	if len(s.rows) < 2 {
		return nil
	}
	records := make([][]any, 0, len(s.rows)-1)
	for _, row := range s.rows[1:] {
		record := make([]any, width)
		for i := range width {
			if i < len(row) && row[i] != "" {
				record[i] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

// normalizeHeader pads the header to width, names blank cells "Unnamed: <i>"
// and disambiguates repeated names with ".1", ".2" suffixes.
// Repeats are detected case-insensitively because column names are.
func normalizeHeader(raw []string, width int) model.Header {
	header := make(model.Header, width)
	used := newNameSet(nil)
	counts := make(map[string]int, width)

	for i := range width {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}

		base := name
		for used.has(name) {
			key := foldName(base)
			counts[key]++
			name = fmt.Sprintf("%s.%d", base, counts[key])
		}
		used.add(name)
		header[i] = name
	}
	return header
}

// textRows converts a query result to engine rows: every value becomes text, NULL stays NULL.
func textRows(result *model.QueryResult) [][]any {
	rows := make([][]any, 0, len(result.Rows))
	for _, row := range result.Rows {
		record := make([]any, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = model.FormatValue(v)
			}
		}
		rows = append(rows, record)
	}
	return rows
}

// tableFromFilePath creates table name from file path
func tableFromFilePath(filePath string) string {
	fileName := trimCompressionExt(filepath.Base(filePath))
	// Then remove the file type extension
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if name == "" {
		return defaultTableName
	}
	return name
}
