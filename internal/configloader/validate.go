package configloader

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/format"
	"github.com/yaklabco/astrewrite/pkg/lang"
)

// maxIndentWidth bounds indentation settings to something a human would pick.
const maxIndentWidth = 16

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "style.indent_width").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownBackupModes lists valid backup mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBackupModes = map[string]bool{
	config.BackupModeSidecar: true,
	config.BackupModeNone:    true,
}

// knownBraceStyles lists valid brace style values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownBraceStyles = map[string]bool{
	format.BraceSameLine: true,
	format.BraceNextLine: true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}
	addError := func(field string, value any, msg string, args ...any) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf(msg, args...),
		})
	}

	if w := cfg.Style.IndentWidth; w < 0 || w > maxIndentWidth {
		addError("style.indent_width", w, "indent width must be between 0 and %d (0 means 4)", maxIndentWidth)
	}
	if w := cfg.Style.TabWidth; w < 0 || w > maxIndentWidth {
		addError("style.tab_width", w, "tab width must be between 0 and %d (0 means the indent width)", maxIndentWidth)
	}
	if cfg.Style.BraceStyle != "" && !knownBraceStyles[cfg.Style.BraceStyle] {
		addError("style.brace_style", cfg.Style.BraceStyle,
			"invalid brace style %q; must be one of: same_line, next_line", cfg.Style.BraceStyle)
	}
	if cfg.Style.UseTabs && cfg.Style.IndentWidth != 0 && cfg.Style.TabWidth != 0 &&
		cfg.Style.IndentWidth != cfg.Style.TabWidth {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "style.indent_width",
			Value:   cfg.Style.IndentWidth,
			Message: "with use_tabs, indentation is emitted in tab_width steps",
		})
	}

	if cfg.Language != "" {
		if _, err := lang.Lookup(cfg.Language); err != nil {
			addError("language", cfg.Language,
				"unknown language %q; must be one of: %s", cfg.Language, strings.Join(lang.Names(), ", "))
		}
	}

	if cfg.Output != "" && !cfg.Output.IsValid() {
		addError("format", cfg.Output, "invalid format %q; must be one of: diff, text, json, summary", cfg.Output)
	}

	if cfg.Backups.Mode != "" && !knownBackupModes[cfg.Backups.Mode] {
		addError("backups.mode", cfg.Backups.Mode,
			"invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode)
	}

	validateIgnorePatterns(cfg, result)

	return result
}

// validateIgnorePatterns checks that ignore patterns are valid globs.
func validateIgnorePatterns(cfg *config.Config, result *ValidationResult) {
	for i, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fmt.Sprintf("ignore[%d]", i),
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern %q", pattern),
			})
		}
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidBackupMode returns true if the backup mode is valid.
func IsValidBackupMode(mode string) bool {
	return knownBackupModes[mode]
}
