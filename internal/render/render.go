// Package render writes query results for terminals and pipes.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/xlsql/xlsql/domain/model"
)

// Output formats
const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatTable, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON}
}

// Options controls how a result is written.
type Options struct {
	// Format is one of the Format* constants. Empty means FormatTable.
	Format string
	// MaxRows caps the rows written. Zero writes every row.
	MaxRows int
}

// Result writes result to w in the requested format. A result without
// columns writes nothing.
func Result(w io.Writer, result *model.QueryResult, opts Options) error {
	if result.Empty() {
		return nil
	}
	if !slices.Contains(append(Formats(), ""), opts.Format) {
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}

	rows := result.Rows
	truncated := opts.MaxRows > 0 && len(rows) > opts.MaxRows
	if truncated {
		rows = rows[:opts.MaxRows]
	}

	if opts.Format == FormatJSON {
		return writeJSON(w, result.Columns, rows)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)
	for _, row := range rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = model.FormatValue(v)
		}
		t.AppendRow(cells)
	}

	switch opts.Format {
	case FormatCSV:
		t.RenderCSV()
		return nil
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatHTML:
		t.RenderHTML()
	default:
		t.Render()
	}

	if truncated {
		_, _ = fmt.Fprintf(w, "(showing %d of %d rows)\n", len(rows), result.Len())
		return nil
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", result.Len())
	return nil
}

// writeJSON writes one object per row. NULL cells become JSON null.
func writeJSON(w io.Writer, columns []string, rows [][]any) error {
	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// NewRenderer returns a lipgloss renderer for w. ColorNever strips all
// styling, ColorAlways forces true color, ColorAuto styles only terminals.
func NewRenderer(w io.Writer, color string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch color {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.TrueColor)
	default:
		if !IsTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return r
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
