// Package config defines the configuration types for astrewrite.
// These types are plain data; discovery and merging live in configloader.
package config

import (
	"github.com/yaklabco/astrewrite/pkg/format"
)

// BackupsConfig controls backup behavior when rewritten files are written back.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Mode    string `mapstructure:"mode" yaml:"mode"` // "sidecar" or "none"
}

// Backup modes.
const (
	BackupModeSidecar = "sidecar"
	BackupModeNone    = "none"
)

// OutputFormat specifies how rewrite results are reported.
type OutputFormat string

const (
	// FormatDiff prints a unified diff per changed file.
	FormatDiff OutputFormat = "diff"
	// FormatText prints the rewritten content.
	FormatText OutputFormat = "text"
	// FormatJSON prints edits and tracked ranges as JSON.
	FormatJSON OutputFormat = "json"
	// FormatSummary prints one line per file with its edit count.
	FormatSummary OutputFormat = "summary"
)

// IsValid reports whether the format is known.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatDiff, FormatText, FormatJSON, FormatSummary:
		return true
	default:
		return false
	}
}

// Config is the root configuration structure.
type Config struct {
	// Style controls indentation and brace placement of generated code.
	Style format.Options `mapstructure:"style" yaml:"style"`

	// Language forces a language binding instead of detecting it per file.
	Language string `mapstructure:"language" yaml:"language,omitempty"`

	// Ignore contains glob patterns for files to skip.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty"`

	// Backups configures backup behavior when writing files.
	Backups BackupsConfig `mapstructure:"backups" yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// Write writes rewritten content back to the input files.
	Write bool `mapstructure:"-" yaml:"-"`

	// Output specifies the report format.
	Output OutputFormat `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation when writing.
	NoBackups bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Style: format.DefaultOptions(),
		Backups: BackupsConfig{
			Enabled: true,
			Mode:    BackupModeSidecar,
		},
		Output: FormatDiff,
	}
}

// BackupsEnabled reports whether written files should be backed up first.
func (c *Config) BackupsEnabled() bool {
	return c.Backups.Enabled && c.Backups.Mode != BackupModeNone && !c.NoBackups
}
