package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xlsql/xlsql/internal/render"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validColors     = []string{ColorAuto, ColorAlways, ColorNever}
	validOutputs    = render.Formats()
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	checks := []struct {
		key   string
		value string
		valid []string
	}{
		{"log_level", strings.ToLower(c.LogLevel), validLogLevels},
		{"log_format", strings.ToLower(c.LogFormat), validLogFormats},
		{"color", strings.ToLower(c.Color), validColors},
		{"output", strings.ToLower(c.Output), validOutputs},
	}
	for _, check := range checks {
		if !slices.Contains(check.valid, check.value) {
			return fmt.Errorf("invalid %s %q: must be one of %s", check.key, check.value, strings.Join(check.valid, ", "))
		}
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("invalid max_rows %d: must not be negative", c.MaxRows)
	}
	return nil
}
