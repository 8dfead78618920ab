// Package xlsql maps spreadsheet files onto tables of an in-memory SQL engine.
//
// A Catalog imports workbooks (xlsx, xlsm, xltx, xltm), delimited text (CSV,
// TSV) and Parquet files, optionally compressed with gzip, bzip2, xz or
// zstandard. Every sheet becomes one table whose columns are all TEXT, named
// after the sheet and made unique with "_1", "_2", ... suffixes. The catalog
// mirrors the files, tables and columns in a tree of tagged nodes that a user
// interface can render.
//
// # Basic Usage
//
//	catalog, err := xlsql.Open(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer catalog.Close()
//
//	file, err := catalog.ImportFile(ctx, "sales.xlsx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := catalog.RunQuery(ctx, "SELECT region, count(*) FROM [Q1] GROUP BY region")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Exporting
//
// A query result can be appended to an imported workbook as a new sheet. The
// sheet is written first; the matching table is created only after the
// workbook was saved:
//
//	table, err := catalog.ExportResultAsTable(ctx, result, file, "Summary")
//
// Sheet names must be non-empty, at most 31 bytes in GBK, free of
// : \ / ? * [ ] and unique among existing tables and sheets. Violations are
// reported as *ExportValidationError carrying the failed ValidationRule.
//
// # Errors
//
// Failed imports return *ImportError and leave the catalog untouched. Failed
// queries return *QueryError. Sentinel errors such as ErrUnsupportedFormat and
// ErrEmptyQuery can be matched with errors.Is.
package xlsql
