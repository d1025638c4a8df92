package reporter

import (
	"fmt"

	"github.com/yaklabco/astrewrite/pkg/config"
)

// Format is an output format. It shares its values with the output setting
// of the configuration file.
type Format = config.OutputFormat

// Output formats supported by the reporter.
const (
	FormatDiff    = config.FormatDiff
	FormatText    = config.FormatText
	FormatJSON    = config.FormatJSON
	FormatSummary = config.FormatSummary
)

// ParseFormat parses a format name. An empty name means FormatDiff.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatDiff, nil
	}
	if f := Format(name); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q; valid formats: diff, text, json, summary", name)
}
