package config

import (
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	switch opts.Format {
	case "", "yaml":
		return []byte(yamlTemplate), nil
	case "json":
		return templateToJSON()
	default:
		return nil, fmt.Errorf("unknown template format %q", opts.Format)
	}
}

const yamlTemplate = `# astrewrite configuration
# See: https://github.com/yaklabco/astrewrite

# Layout of generated code. Existing text keeps its own indentation;
# inserted and moved code is re-indented to match its destination.
style:
  indent_width: 4
  use_tabs: false
  tab_width: 4
  # same_line or next_line
  brace_style: same_line

# Force a language instead of detecting it per file: curly or markdown
# language: curly

# File patterns to skip (doublestar globs)
# ignore:
#   - "vendor/**"
#   - "**/testdata/**"

# Back up files before --write replaces them
backups:
  enabled: true
  # sidecar or none
  mode: sidecar
`

// templateToJSON renders the default configuration as JSON.
func templateToJSON() ([]byte, error) {
	cfg := NewConfig()
	cfg.Ignore = []string{"vendor/**"}

	jsonBytes, err := json.MarshalIndent(map[string]any{
		"style":   cfg.Style,
		"ignore":  cfg.Ignore,
		"backups": map[string]any{"enabled": cfg.Backups.Enabled, "mode": cfg.Backups.Mode},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# astrewrite configuration
# See: https://github.com/yaklabco/astrewrite`
}
