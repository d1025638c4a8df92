package configloader

import (
	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/format"
)

// merge combines two configurations, with override taking precedence over base.
// It is used for CLI flags, where unset means zero. Config files are decoded
// over the merged result instead, so they can also turn booleans off.
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Booleans: override can only switch them on
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base
	result.Style = mergeStyle(base, override)

	if override.Language != "" {
		result.Language = override.Language
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Write {
		result.Write = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	if override.Backups.Mode != "" {
		result.Backups.Mode = override.Backups.Mode
	}
	if override.Backups.Enabled {
		result.Backups.Enabled = true
	}

	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	return &result
}

func mergeStyle(base, override *config.Config) format.Options {
	style := base.Style
	if override.Style.IndentWidth != 0 {
		style.IndentWidth = override.Style.IndentWidth
	}
	if override.Style.TabWidth != 0 {
		style.TabWidth = override.Style.TabWidth
	}
	if override.Style.BraceStyle != "" {
		style.BraceStyle = override.Style.BraceStyle
	}
	if override.Style.UseTabs {
		style.UseTabs = true
	}
	return style
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
