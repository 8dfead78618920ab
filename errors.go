package xlsql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("xlsql: unsupported file format")

	// ErrEmptyData indicates that the data source contains no sheets with data
	ErrEmptyData = errors.New("xlsql: empty data source")

	// ErrInvalidData indicates malformed or invalid data
	ErrInvalidData = errors.New("xlsql: invalid data format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("xlsql: file not found")

	// ErrPermissionDenied indicates permission denied
	ErrPermissionDenied = errors.New("xlsql: permission denied")

	// ErrEmptyQuery indicates that there is no SQL to run
	ErrEmptyQuery = errors.New("xlsql: empty query")

	// ErrTableNotFound indicates the table is not part of the catalog
	ErrTableNotFound = errors.New("xlsql: table not found in catalog")

	// ErrFileNotInCatalog indicates the file is not part of the catalog
	ErrFileNotInCatalog = errors.New("xlsql: file not found in catalog")

	// ErrUnsupportedExportTarget indicates that the export target cannot receive new sheets
	ErrUnsupportedExportTarget = errors.New("xlsql: export target is not an uncompressed workbook")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("xlsql: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}

// ImportError reports a spreadsheet that could not be read or parsed.
// Nothing from the failed import is committed to the catalog.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// QueryError reports malformed SQL or a runtime engine error.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ValidationRule names the sheet-name rule an export violated.
type ValidationRule string

// Sheet-name rules checked before an export writes anything.
const (
	RuleNoResult    ValidationRule = "no-result"
	RuleEmpty       ValidationRule = "empty"
	RuleTooLong     ValidationRule = "too-long"
	RuleInvalidChar ValidationRule = "invalid-char"
	RuleDuplicate   ValidationRule = "duplicate"
)

// ExportValidationError reports an export rejected before any write.
type ExportValidationError struct {
	Name   string
	Rule   ValidationRule
	Reason string
}

func (e *ExportValidationError) Error() string {
	return fmt.Sprintf("invalid sheet name %q (%s): %s", e.Name, e.Rule, e.Reason)
}

// ExportIOError reports a failed write to the export target after validation passed.
type ExportIOError struct {
	Path string
	Err  error
}

func (e *ExportIOError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Path, e.Err)
}

func (e *ExportIOError) Unwrap() error {
	return e.Err
}
