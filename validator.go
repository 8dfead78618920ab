package xlsql

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	// maxSheetNameBytes is the sheet-name limit, measured in the legacy double-byte encoding.
	maxSheetNameBytes = 31
	// invalidSheetNameChars may not appear in a sheet name.
	invalidSheetNameChars = `:\/?*[]`
)

// validator handles validation of import paths and export sheet names
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single import path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		switch {
		case errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}
	if !IsSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateSheetName checks an export sheet name, in rule order:
// empty, too long, invalid characters, then duplicates of existing (case-insensitive).
func (v *validator) validateSheetName(name string, existing []string) error {
	if name == "" {
		return &ExportValidationError{Name: name, Rule: RuleEmpty, Reason: "sheet name cannot be empty"}
	}
	if n := legacyEncodedLen(name); n > maxSheetNameBytes {
		return &ExportValidationError{
			Name:   name,
			Rule:   RuleTooLong,
			Reason: fmt.Sprintf("sheet name is %d bytes, at most %d allowed", n, maxSheetNameBytes),
		}
	}
	if i := strings.IndexAny(name, invalidSheetNameChars); i >= 0 {
		return &ExportValidationError{
			Name:   name,
			Rule:   RuleInvalidChar,
			Reason: fmt.Sprintf("sheet name cannot contain %q", name[i]),
		}
	}
	if newNameSet(existing).has(name) {
		return &ExportValidationError{Name: name, Rule: RuleDuplicate, Reason: "a table or sheet with this name already exists"}
	}
	return nil
}

// legacyEncodedLen returns the byte length of name in GBK.
// Characters GBK cannot encode count as one replacement byte.
func legacyEncodedLen(name string) int {
	encoded, err := encoding.ReplaceUnsupported(simplifiedchinese.GBK.NewEncoder()).String(name)
	if err != nil {
		return len(name)
	}
	return len(encoded)
}
