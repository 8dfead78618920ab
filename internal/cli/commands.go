package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xlsql/xlsql/internal/config"
	"github.com/xlsql/xlsql/internal/logging"
	"github.com/xlsql/xlsql/internal/render"
	"github.com/xlsql/xlsql/internal/session"
	"github.com/xlsql/xlsql/internal/tui"
)

var (
	// ErrNoSQL indicates a one-shot command without SQL to run
	ErrNoSQL = errors.New("no SQL given: use --execute, --file or pipe it on stdin")
	// ErrNoExportTarget indicates an export without a workbook to append to
	ErrNoExportTarget = errors.New("no export target: use --to with one of the imported files")
)

// openSession starts a session and imports files in order. The first
// failing import aborts and closes the session.
func openSession(ctx context.Context, files []string) (*session.Session, error) {
	sess, err := session.New(ctx, session.WithLogger(logging.FromContext(ctx)))
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if err := sess.Import(ctx, path); err != nil {
			_ = sess.Close()
			return nil, err
		}
	}
	return sess, nil
}

// sqlOptions holds the SQL source flags shared by query and export.
type sqlOptions struct {
	Execute string
	File    string
}

func (o *sqlOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Execute, "execute", "e", "", "SQL to run")
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "Read SQL from file")
}

// read returns the SQL from the flags, or from stdin when it is not a terminal.
func (o *sqlOptions) read(stdin io.Reader) (string, error) {
	switch {
	case o.Execute != "":
		return o.Execute, nil
	case o.File != "":
		content, err := os.ReadFile(o.File)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(content), nil
	case stdin != nil && !render.IsTerminal(stdin):
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(content)) == "" {
			return "", ErrNoSQL
		}
		return string(content), nil
	default:
		return "", ErrNoSQL
	}
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{Format: cfg.Output, MaxRows: cfg.MaxRows}
}

func newShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [files...]",
		Short: "Start the interactive SQL shell",
		Long: `Import the given files and start an interactive SQL shell.

SQL statements end with a semicolon. Dot-commands manage the catalog;
type .help inside the shell for the list.`,
		Example: `  xlsql shell sales.xlsx
  xlsql shell orders.csv customers.tsv.gz`,
		RunE: runShell,
	}
}

func newQueryCommand() *cobra.Command {
	opts := &sqlOptions{}

	cmd := &cobra.Command{
		Use:   "query [files...]",
		Short: "Run one SQL statement over the given files",
		Long: `Import the given files, run one SQL statement and print its result.

Each non-empty sheet becomes a table named after the sheet; CSV, TSV and
Parquet files become a table named after the file.`,
		Example: `  xlsql query sales.xlsx -e "SELECT * FROM [Q1] LIMIT 5"
  xlsql query orders.csv -e "SELECT count(*) FROM orders" -o json
  cat report.sql | xlsql query sales.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)

			query, err := opts.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess, err := openSession(ctx, args)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			sess.SetSQL(query)
			if err := sess.Run(ctx); err != nil {
				return err
			}
			return render.Result(cmd.OutOrStdout(), sess.Result(), renderOptions(cfg))
		},
	}
	opts.register(cmd)
	return cmd
}

// exportOptions holds options for the export command.
type exportOptions struct {
	sqlOptions
	To    string
	Sheet string
}

func newExportCommand() *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export [files...]",
		Short: "Append a query result to a workbook as a new sheet",
		Long: `Import the given files, run one SQL statement and append its result
to one of the imported workbooks as a new sheet.

The sheet name must be unique in the workbook and among all tables, at most
31 bytes long and free of : \ / ? * [ ].`,
		Example: `  xlsql export sales.xlsx -e "SELECT region, sum(total) FROM [Q1] GROUP BY region" --sheet Summary
  xlsql export sales.xlsx orders.csv --to sales.xlsx --sheet Joined -f join.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			query, err := opts.read(cmd.InOrStdin())
			if err != nil {
				return err
			}
			sess, err := openSession(ctx, args)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			target := opts.To
			if target == "" {
				files := sess.Catalog().Files()
				if len(files) != 1 {
					return ErrNoExportTarget
				}
				target = files[0].Path
			}
			file, ok := sess.Catalog().LookupFile(target)
			if !ok {
				return fmt.Errorf("%w: %s was not imported", ErrNoExportTarget, target)
			}
			node, _ := sess.Catalog().NodeForFile(file)

			sess.SetSQL(query)
			if err := sess.Run(ctx); err != nil {
				return err
			}
			if err := sess.Export(ctx, node, opts.Sheet); err != nil {
				return err
			}
			status, _ := sess.Status()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.To, "to", "", "Imported workbook to append to (default: the only imported file)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "Name of the new sheet")
	_ = cmd.MarkFlagRequired("sheet")
	return cmd
}

func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [files...]",
		Short: "Browse the imported files in a full-screen tree",
		Long: `Import the given files and open a full-screen browser over the
file, sheet and field tree. Enter opens the actions of the selected node,
e edits the SQL line and x exports the last result as a new sheet of the
selected file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)

			sess, err := openSession(ctx, args)
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			renderer := render.NewRenderer(cmd.OutOrStdout(), cfg.Color)
			return tui.Run(ctx, sess, cfg.Theme, renderer)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display xlsql version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "xlsql v%s\n", Version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit %s, built %s\n", GitCommit, BuildDate)
		},
	}
}
