package model

import (
	"path/filepath"
	"strings"
)

// File is one imported spreadsheet.
type File struct {
	// Path is the path the file was imported from.
	Path string
	// Name is the display name (file name without extension).
	Name string
	// Ext is the file extension including compression suffixes, e.g. ".xlsx" or ".csv.gz".
	Ext string
	// Tables are the tables owned by this file in creation order.
	Tables []*Table
}

// NewFile creates a File for the given path.
func NewFile(path string) *File {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// .csv.gz and friends: move the inner extension too
	if inner := filepath.Ext(stem); inner != "" && isCompressionExt(ext) {
		ext = inner + ext
		stem = strings.TrimSuffix(stem, inner)
	}
	return &File{
		Path: path,
		Name: stem,
		Ext:  ext,
	}
}

// isCompressionExt reports whether ext is one of the compression suffixes.
func isCompressionExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".gz", ".bz2", ".xz", ".zst":
		return true
	default:
		return false
	}
}

// AddTable appends a table to the file and sets its owner.
func (f *File) AddTable(t *Table) {
	t.File = f
	f.Tables = append(f.Tables, t)
}

// RemoveTable detaches t from the file. It reports whether t was owned by f.
func (f *File) RemoveTable(t *Table) bool {
	for i, owned := range f.Tables {
		if owned == t {
			f.Tables = append(f.Tables[:i], f.Tables[i+1:]...)
			t.File = nil
			return true
		}
	}
	return false
}

// TableNames returns the names of the owned tables in creation order.
func (f *File) TableNames() []string {
	names := make([]string, 0, len(f.Tables))
	for _, t := range f.Tables {
		names = append(names, t.Name)
	}
	return names
}

// Table is a relational table materialized from a sheet or an exported query result.
type Table struct {
	// Name is unique within the catalog.
	Name string
	// Columns in source column order.
	Columns []Column
	// File is the owning file, nil once the table is detached.
	File *File
}

// NewTable create new Table.
func NewTable(name string, columns []Column) *Table {
	return &Table{
		Name:    name,
		Columns: columns,
	}
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name != t2.Name {
		return false
	}
	if len(t.Columns) != len(t2.Columns) {
		return false
	}
	for i, c := range t.Columns {
		if c != t2.Columns[i] {
			return false
		}
	}
	return true
}
