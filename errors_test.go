package xlsql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorContext(t *testing.T) {
	t.Parallel()

	base := errors.New("disk full")

	tests := []struct {
		name     string
		ctx      *ErrorContext
		expected string
	}{
		{
			name:     "operation only",
			ctx:      NewErrorContext("export", ""),
			expected: "xlsql: export failed: disk full",
		},
		{
			name:     "file and table",
			ctx:      NewErrorContext("import", "a.xlsx").WithTable("S"),
			expected: "xlsql: import failed, file: a.xlsx, table: S: disk full",
		},
		{
			name:     "details",
			ctx:      NewErrorContext("materialize sheet", "").WithTable("S").WithDetails("sheet S"),
			expected: "xlsql: materialize sheet failed, table: S, details: sheet S: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.ctx.Error(base)
			assert.EqualError(t, err, tt.expected)
			assert.ErrorIs(t, err, base)
		})
	}

	assert.EqualError(t, NewErrorContext("remove table", "").Error(nil), "xlsql: remove table failed")
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()

	importErr := &ImportError{Path: "a.xls", Err: ErrUnsupportedFormat}
	assert.EqualError(t, importErr, "import a.xls: xlsql: unsupported file format")
	assert.ErrorIs(t, importErr, ErrUnsupportedFormat)

	queryErr := &QueryError{Query: "", Err: ErrEmptyQuery}
	assert.EqualError(t, queryErr, "query failed: xlsql: empty query")
	assert.ErrorIs(t, queryErr, ErrEmptyQuery)

	validationErr := &ExportValidationError{Name: "a/b", Rule: RuleInvalidChar, Reason: "bad"}
	assert.EqualError(t, validationErr, `invalid sheet name "a/b" (invalid-char): bad`)

	ioErr := &ExportIOError{Path: "b.csv", Err: ErrUnsupportedExportTarget}
	assert.ErrorIs(t, ioErr, ErrUnsupportedExportTarget)
	assert.Contains(t, ioErr.Error(), "export to b.csv")
}
