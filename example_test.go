package xlsql_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/xlsql/xlsql"
)

// createTempCSV writes a small CSV file into a fresh temporary directory.
func createTempCSV(name, content string) (string, string) {
	tmpDir, err := os.MkdirTemp("", "xlsql_example")
	if err != nil {
		log.Fatal(err)
	}
	path := filepath.Join(tmpDir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Fatal(err)
	}
	return tmpDir, path
}

// ExampleCatalog_ImportFile imports a CSV file and queries the resulting table.
func ExampleCatalog_ImportFile() {
	tmpDir, path := createTempCSV("fruits.csv", "name,color\napple,red\nbanana,yellow\ncherry,\n")
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	catalog, err := xlsql.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer catalog.Close()

	file, err := catalog.ImportFile(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("tables:", file.TableNames())
	fmt.Println("columns:", file.Tables[0].ColumnNames())

	result, err := catalog.RunQuery(ctx, "SELECT name FROM [fruits] WHERE color IS NULL")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("uncoloured:", result.Strings())

	// Output:
	// tables: [fruits]
	// columns: [name color]
	// uncoloured: [[cherry]]
}

// ExampleCatalog_ImportFile_collision shows how table names are made unique.
func ExampleCatalog_ImportFile_collision() {
	tmpDir, path := createTempCSV("data.csv", "id\n1\n")
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	catalog, err := xlsql.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer catalog.Close()

	for range 3 {
		if _, err := catalog.ImportFile(ctx, path); err != nil {
			log.Fatal(err)
		}
	}

	names, err := catalog.ListTableNames(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(names)

	// Output:
	// [data data_1 data_2]
}

// ExampleCatalog_ExportResultAsTable shows a rejected sheet name.
func ExampleCatalog_ExportResultAsTable() {
	tmpDir, path := createTempCSV("scores.csv", "player,score\nann,3\n")
	defer os.RemoveAll(tmpDir)

	ctx := context.Background()
	catalog, err := xlsql.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer catalog.Close()

	file, err := catalog.ImportFile(ctx, path)
	if err != nil {
		log.Fatal(err)
	}
	result, err := catalog.RunQuery(ctx, "SELECT player FROM scores")
	if err != nil {
		log.Fatal(err)
	}

	_, err = catalog.ExportResultAsTable(ctx, result, file, "a/b")
	var validationErr *xlsql.ExportValidationError
	if errors.As(err, &validationErr) {
		fmt.Println("rejected:", validationErr.Rule)
	}

	// Output:
	// rejected: invalid-char
}
