// Package cli provides the command-line interface for xlsql.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xlsql/xlsql/internal/config"
	"github.com/xlsql/xlsql/internal/logging"
	"github.com/xlsql/xlsql/internal/render"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile  string
		closeLog func() error
	)

	rootCmd := &cobra.Command{
		Use:   "xlsql",
		Short: "xlsql - query spreadsheets with SQL",
		Long: `xlsql imports Excel workbooks, CSV, TSV and Parquet files into an
in-memory SQL engine, one table per sheet, and lets you query them
interactively or from scripts.

Query results can be appended to a workbook as a new sheet.

Without a subcommand xlsql starts the interactive shell.`,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closer, err := logging.New(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			closeLog = closer
			if cfg.FileUsed != "" {
				logger.Debug("using config file", "path", cfg.FileUsed)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = logging.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if closeLog == nil {
				return nil
			}
			return closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./xlsql.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json)")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("color", "", "Colorize output (auto|always|never)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|csv|markdown|html|json)")
	rootCmd.PersistentFlags().String("history-file", "", "Shell history file")
	rootCmd.PersistentFlags().Int("max-rows", 0, "Maximum rows to print (0 for all)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return render.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newShellCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newExportCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return config.Default()
}
