package xlsql

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileType represents supported source file types, ignoring compression
type FileType int

const (
	// FileTypeXLSX represents an Excel workbook (xlsx, xlsm, xltx, xltm)
	FileTypeXLSX FileType = iota
	// FileTypeCSV represents CSV file type
	FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
)

// workbookExts are the workbook flavours excelize can open
var workbookExts = []string{extXLSX, ".xlsm", ".xltx", ".xltm"}

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// SupportedExtensions lists every importable extension, compressed variants included.
func SupportedExtensions() []string {
	baseExts := append(append([]string{}, workbookExts...), extCSV, extTSV, extParquet)
	var exts []string
	for _, base := range baseExts {
		for _, c := range []CompressionType{CompressionNone, CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
			exts = append(exts, base+c.Extension())
		}
	}
	return exts
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(path string) bool {
	return detectFileType(path) != FileTypeUnsupported
}

// detectFileType detects file type from extension, after stripping a compression extension
func detectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(trimCompressionExt(path)))
	switch ext {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extParquet:
		return FileTypeParquet
	}
	for _, wb := range workbookExts {
		if ext == wb {
			return FileTypeXLSX
		}
	}
	return FileTypeUnsupported
}

// file represents a source file that can be read into sheets
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile creates a new file
func newFile(path string) *file {
	return &file{
		path:        path,
		fileType:    detectFileType(path),
		compression: compressionFromPath(path),
	}
}

// isCompressed returns true if file is compressed
func (f *file) isCompressed() bool {
	return f.compression != CompressionNone
}

// isWritableWorkbook reports whether new sheets can be appended to the file
func (f *file) isWritableWorkbook() bool {
	return f.fileType == FileTypeXLSX && !f.isCompressed()
}

// openReader opens file and returns a reader that handles compression
func (f *file) openReader() (io.Reader, func() error, error) {
	osFile, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	reader, closeDecoder, err := newDecompressor(f.compression, osFile)
	if err != nil {
		_ = osFile.Close()
		return nil, nil, err
	}
	return reader, func() error {
		return errors.Join(closeDecoder(), osFile.Close())
	}, nil
}

// readSheets reads every sheet of the file as raw text cells, in the file's native order
func (f *file) readSheets(ctx context.Context) ([]*sheet, error) {
	switch f.fileType {
	case FileTypeXLSX:
		return f.readWorkbook()
	case FileTypeCSV:
		return f.readDelimited(',')
	case FileTypeTSV:
		return f.readDelimited('\t')
	case FileTypeParquet:
		return f.readParquet(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.path)
	}
}

// readWorkbook parses every sheet of a workbook
func (f *file) readWorkbook() ([]*sheet, error) {
	var (
		xlsxFile *excelize.File
		err      error
	)
	if f.isCompressed() {
		// excelize needs random access, so compressed workbooks are buffered first
		reader, closer, openErr := f.openReader()
		if openErr != nil {
			return nil, openErr
		}
		data, readErr := io.ReadAll(reader)
		_ = closer()
		if readErr != nil {
			return nil, readErr
		}
		xlsxFile, err = excelize.OpenReader(bytes.NewReader(data))
	} else {
		xlsxFile, err = excelize.OpenFile(f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in Excel file: %s", ErrEmptyData, f.path)
	}

	sheets := make([]*sheet, 0, len(sheetNames))
	for _, name := range sheetNames {
		rows, err := xlsxFile.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets = append(sheets, &sheet{name: name, rows: rows})
	}
	return sheets, nil
}

// readDelimited parses a CSV or TSV file into a single sheet named after the file
func (f *file) readDelimited(delimiter rune) ([]*sheet, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = closer() // Ignore close error
	}()

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return []*sheet{{name: tableFromFilePath(f.path), rows: rows}}, nil
}
