// Package main provides the xlsql command.
package main

import (
	"os"

	"github.com/xlsql/xlsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
