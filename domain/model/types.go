// Package model provides the domain model for xlsql: imported files, the tables
// materialized from their sheets, the navigable tree mirroring them, and query results.
package model

// ColumnType represents the SQL column type
type ColumnType int

const (
	// ColumnTypeText represents TEXT column type.
	// Imported values are never coerced, so this is the only type a column gets.
	ColumnTypeText ColumnType = iota
)

// sqlTypeText is the SQL TEXT type string
const sqlTypeText = "TEXT"

// String returns the SQL column type string
func (ct ColumnType) String() string {
	return sqlTypeText
}

// Column is one field of a Table.
type Column struct {
	// Name is taken verbatim from the source sheet header.
	Name string
	// Type is the declared SQL type.
	Type ColumnType
}

// NewColumn creates a text column.
func NewColumn(name string) Column {
	return Column{Name: name, Type: ColumnTypeText}
}

// Header is a sheet header row.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Columns converts the header into text columns in header order.
func (h Header) Columns() []Column {
	columns := make([]Column, 0, len(h))
	for _, name := range h {
		columns = append(columns, NewColumn(name))
	}
	return columns
}
