package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// configFileNames are looked up in the working directory when no file is given.
var configFileNames = []string{"xlsql.yaml", "xlsql.yml"}

// flagKeys maps CLI flag names onto config keys. Other flags are not configuration.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"log-format":   "log_format",
	"log-file":     "log_file",
	"color":        "color",
	"output":       "output",
	"history-file": "history_file",
	"max-rows":     "max_rows",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > xlsql.yaml > xlsql.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"log_level":        def.LogLevel,
		"log_format":       def.LogFormat,
		"log_file":         def.LogFile,
		"color":            def.Color,
		"output":           def.Output,
		"history_file":     def.HistoryFile,
		"max_rows":         def.MaxRows,
		"theme.keyword":    def.Theme.Keyword,
		"theme.identifier": def.Theme.Identifier,
		"theme.literal":    def.Theme.Literal,
		"theme.table":      def.Theme.Table,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	fileUsed := findConfigFile(cfgFile)
	if fileUsed != "" {
		if err := k.Load(file.Provider(fileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", fileUsed, err)
		}
	}

	// 3. Environment variables (XLSQL_ prefix)
	// Transform: XLSQL_MAX_ROWS -> max_rows, XLSQL_THEME__KEYWORD -> theme.keyword
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = fileUsed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
