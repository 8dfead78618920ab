package engine

import "errors"

// Predefined errors
var (
	// ErrNoColumns is returned when a table would be created without columns
	ErrNoColumns = errors.New("engine: table must have at least one column")

	// ErrRowWidth is returned when an inserted row does not match the table width
	ErrRowWidth = errors.New("engine: row width does not match column count")

	// ErrEmptyTableName is returned when a statement names no table
	ErrEmptyTableName = errors.New("engine: empty table name")

	// ErrClosed is returned when the engine is used after Close
	ErrClosed = errors.New("engine: engine is closed")
)
