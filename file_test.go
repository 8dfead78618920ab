package xlsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected FileType
	}{
		{name: "xlsx workbook", path: "book.xlsx", expected: FileTypeXLSX},
		{name: "macro workbook", path: "book.xlsm", expected: FileTypeXLSX},
		{name: "template", path: "book.xltx", expected: FileTypeXLSX},
		{name: "upper case extension", path: "BOOK.XLSX", expected: FileTypeXLSX},
		{name: "compressed workbook", path: "book.xlsx.zst", expected: FileTypeXLSX},
		{name: "CSV file", path: "test.csv", expected: FileTypeCSV},
		{name: "Compressed CSV file", path: "test.csv.gz", expected: FileTypeCSV},
		{name: "Compressed TSV file", path: "test.tsv.bz2", expected: FileTypeTSV},
		{name: "Parquet file", path: "test.parquet", expected: FileTypeParquet},
		{name: "Compressed Parquet file", path: "test.parquet.xz", expected: FileTypeParquet},
		{name: "Legacy xls", path: "old.xls", expected: FileTypeUnsupported},
		{name: "Unsupported file", path: "test.txt", expected: FileTypeUnsupported},
		{name: "Bare compression", path: "test.gz", expected: FileTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, detectFileType(tt.path))
			assert.Equal(t, tt.expected != FileTypeUnsupported, IsSupportedFile(tt.path))
		})
	}
}

func TestFile_IsWritableWorkbook(t *testing.T) {
	t.Parallel()

	assert.True(t, newFile("book.xlsx").isWritableWorkbook())
	assert.False(t, newFile("book.xlsx.gz").isWritableWorkbook())
	assert.False(t, newFile("data.csv").isWritableWorkbook())
	assert.True(t, newFile("data.csv.zst").isCompressed())
}

func TestSupportedExtensions(t *testing.T) {
	t.Parallel()

	exts := SupportedExtensions()
	assert.Contains(t, exts, ".xlsx")
	assert.Contains(t, exts, ".csv.gz")
	assert.Contains(t, exts, ".parquet.zst")
	assert.NotContains(t, exts, ".xls")
	for _, ext := range exts {
		assert.True(t, IsSupportedFile("x"+ext), ext)
	}
}

func TestFile_ReadSheets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("workbook keeps sheet order", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, t.TempDir(), "book.xlsx",
			testSheet{name: "Zeta", rows: [][]any{{"a"}, {"1"}}},
			testSheet{name: "Alpha", rows: [][]any{{"b"}, {"2"}}},
		)

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 2)
		assert.Equal(t, "Zeta", sheets[0].name)
		assert.Equal(t, "Alpha", sheets[1].name)
		assert.Equal(t, [][]string{{"b"}, {"2"}}, sheets[1].rows)
	})

	t.Run("numbers are read as text", func(t *testing.T) {
		t.Parallel()

		path := writeWorkbook(t, t.TempDir(), "nums.xlsx",
			testSheet{name: "Sheet1", rows: [][]any{{"n"}, {42}, {1.5}}},
		)

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, [][]string{{"n"}, {"42"}, {"1.5"}}, sheets[0].rows)
	})

	t.Run("zstd compressed workbook", func(t *testing.T) {
		t.Parallel()

		data := workbookBytes(t, testSheet{name: "Data", rows: [][]any{{"x"}, {"y"}}})
		path := writeFile(t, t.TempDir(), "book.xlsx.zst", zstdBytes(t, data))

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "Data", sheets[0].name)
	})

	t.Run("csv strips BOM and is named after the file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "people.csv", []byte("\ufeffname,age\nalice,30\nbob\n"))

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "people", sheets[0].name)
		assert.Equal(t, [][]string{{"name", "age"}, {"alice", "30"}, {"bob"}}, sheets[0].rows)
	})

	t.Run("gzip csv", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "orders.csv.gz", gzipBytes(t, []byte("id\n1\n2\n")))

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "orders", sheets[0].name)
		assert.Len(t, sheets[0].rows, 3)
	})

	t.Run("xz tsv", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "items.tsv.xz", xzBytes(t, []byte("a\tb\n1\t2\n")))

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, sheets[0].rows)
	})

	t.Run("parquet renders values as text", func(t *testing.T) {
		t.Parallel()

		data := parquetBytes(t, []int64{1, 2}, []string{"one", ""}, []bool{true, false})
		path := writeFile(t, t.TempDir(), "numbers.parquet", data)

		sheets, err := newFile(path).readSheets(ctx)
		require.NoError(t, err)
		require.Len(t, sheets, 1)
		assert.Equal(t, "numbers", sheets[0].name)
		assert.Equal(t, [][]string{{"id", "name"}, {"1", "one"}, {"2", ""}}, sheets[0].rows)
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "broken.xlsx", []byte("not a zip archive"))

		_, err := newFile(path).readSheets(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidData))
	})

	t.Run("empty parquet", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "empty.parquet", nil)

		_, err := newFile(path).readSheets(ctx)
		require.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()

		_, err := newFile("legacy.xls").readSheets(ctx)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
