// Package config provides configuration management for the xlsql CLI.
package config

import (
	"os"
	"path/filepath"

	"github.com/xlsql/xlsql/highlight"
	"github.com/xlsql/xlsql/internal/render"
)

// Defaults
const (
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
	DefaultColor     = ColorAuto
	DefaultOutput    = render.FormatTable
	DefaultMaxRows   = 1000
	// EnvPrefix prefixes every environment variable read as configuration.
	EnvPrefix = "XLSQL_"
	// historyFileName is the shell history file inside the home directory.
	historyFileName = ".xlsql_history"
)

// Color modes
const (
	ColorAuto   = render.ColorAuto
	ColorAlways = render.ColorAlways
	ColorNever  = render.ColorNever
)

// Config holds the xlsql configuration.
type Config struct {
	LogLevel    string          `koanf:"log_level"`
	LogFormat   string          `koanf:"log_format"`
	LogFile     string          `koanf:"log_file"`
	Color       string          `koanf:"color"`
	Output      string          `koanf:"output"`
	HistoryFile string          `koanf:"history_file"`
	MaxRows     int             `koanf:"max_rows"`
	Theme       highlight.Theme `koanf:"theme"`

	// FileUsed is the config file that was loaded, if any.
	FileUsed string `koanf:"-"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	theme := highlight.DefaultTheme()
	return &Config{
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		Color:       DefaultColor,
		Output:      DefaultOutput,
		HistoryFile: defaultHistoryFile(),
		MaxRows:     DefaultMaxRows,
		Theme:       theme,
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}
