package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xlsql/xlsql/domain/model"
)

func sampleResult() *model.QueryResult {
	return &model.QueryResult{
		Columns: []string{"id", "item"},
		Rows: [][]any{
			{int64(1), "pen"},
			{int64(2), nil},
			{int64(3), "ink, blue"},
		},
	}
}

func TestResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     Options
		contains []string
	}{
		{
			name:     "table",
			opts:     Options{},
			contains: []string{"ID", "ITEM", "pen", "ink, blue", "(3 rows)"},
		},
		{
			name:     "csv",
			opts:     Options{Format: FormatCSV},
			contains: []string{"id,item", "1,pen", `3,"ink, blue"`},
		},
		{
			name:     "markdown",
			opts:     Options{Format: FormatMarkdown},
			contains: []string{"| id | item |", "| 1 | pen |"},
		},
		{
			name:     "html",
			opts:     Options{Format: FormatHTML},
			contains: []string{"<table", "pen", "</table>"},
		},
		{
			name:     "truncated",
			opts:     Options{MaxRows: 2},
			contains: []string{"pen", "(showing 2 of 3 rows)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, Result(&buf, sampleResult(), tt.opts))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestResult_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Result(&buf, sampleResult(), Options{Format: FormatJSON, MaxRows: 2}))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "pen", records[0]["item"])
	assert.InDelta(t, 2, records[1]["id"], 0)
	assert.Nil(t, records[1]["item"])
}

func TestResult_EmptyAndInvalid(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Result(&buf, &model.QueryResult{}, Options{}))
	require.NoError(t, Result(&buf, nil, Options{}))
	assert.Zero(t, buf.Len())

	err := Result(&buf, sampleResult(), Options{Format: "yaml"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "yaml"))
}

func TestNewRenderer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, termenv.Ascii, NewRenderer(&buf, ColorNever).ColorProfile())
	assert.Equal(t, termenv.Ascii, NewRenderer(&buf, ColorAuto).ColorProfile())
	assert.Equal(t, termenv.TrueColor, NewRenderer(&buf, ColorAlways).ColorProfile())
	assert.False(t, IsTerminal(&buf))
}
