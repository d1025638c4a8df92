package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/format"
)

func TestConfigClone(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var c *config.Config
		clone := c.Clone()
		assert.Nil(t, clone)
	})

	t.Run("empty config", func(t *testing.T) {
		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies Ignore slice", func(t *testing.T) {
		original := &config.Config{
			Ignore: []string{"*.cy", "vendor/**"},
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.Equal(t, original.Ignore, clone.Ignore)

		clone.Ignore[0] = "changed"
		assert.Equal(t, "*.cy", original.Ignore[0])
	})

	t.Run("preserves all fields", func(t *testing.T) {
		original := &config.Config{
			Style:     format.Options{IndentWidth: 2, UseTabs: true, TabWidth: 8, BraceStyle: format.BraceNextLine},
			Language:  "markdown",
			Ignore:    []string{"*.bak"},
			Backups:   config.BackupsConfig{Enabled: true, Mode: config.BackupModeSidecar},
			Write:     true,
			Output:    config.FormatJSON,
			NoBackups: true,
		}

		clone := original.Clone()
		require.NotNil(t, clone)
		assert.Equal(t, original, clone)
	})
}

func TestConfigToYAML(t *testing.T) {
	t.Run("nil config returns nil", func(t *testing.T) {
		var cfg *config.Config
		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("CLI fields are not persisted", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Language = "curly"
		cfg.Write = true
		cfg.Output = config.FormatJSON

		data, err := cfg.ToYAML()
		require.NoError(t, err)
		assert.Contains(t, string(data), "language: curly")
		assert.Contains(t, string(data), "indent_width: 4")
		assert.NotContains(t, string(data), "write")
		assert.NotContains(t, string(data), "json")
	})

	t.Run("header", func(t *testing.T) {
		data, err := config.NewConfig().ToYAMLWithHeader(config.DefaultTemplateHeader())
		require.NoError(t, err)
		assert.Contains(t, string(data), "# astrewrite configuration\n# See: https://github.com/yaklabco/astrewrite\n\nstyle:")
	})
}

func TestFromYAML(t *testing.T) {
	t.Run("parses valid YAML", func(t *testing.T) {
		data := []byte(`
style:
  indent_width: 2
  brace_style: next_line
language: curly
ignore:
  - "vendor/**"
backups:
  enabled: false
`)
		cfg, err := config.FromYAML(data)
		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Style.IndentWidth)
		assert.Equal(t, format.BraceNextLine, cfg.Style.BraceStyle)
		assert.Equal(t, "curly", cfg.Language)
		assert.Equal(t, []string{"vendor/**"}, cfg.Ignore)
		assert.False(t, cfg.Backups.Enabled)
	})

	t.Run("empty input", func(t *testing.T) {
		cfg, err := config.FromYAML([]byte("\n"))
		require.NoError(t, err)
		assert.Equal(t, &config.Config{}, cfg)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := config.FromYAML([]byte("flavor: gfm\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flavor")
	})

	t.Run("round trip", func(t *testing.T) {
		original := config.NewConfig()
		original.Ignore = []string{"a/**"}

		data, err := original.ToYAML()
		require.NoError(t, err)
		cfg, err := config.FromYAML(data)
		require.NoError(t, err)

		assert.Equal(t, original.Style, cfg.Style)
		assert.Equal(t, original.Ignore, cfg.Ignore)
		assert.Equal(t, original.Backups, cfg.Backups)
	})
}

func TestBackupsEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}, want: true},
		{name: "disabled", mutate: func(c *config.Config) { c.Backups.Enabled = false }, want: false},
		{name: "mode none", mutate: func(c *config.Config) { c.Backups.Mode = config.BackupModeNone }, want: false},
		{name: "no backups flag", mutate: func(c *config.Config) { c.NoBackups = true }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			tt.mutate(cfg)
			assert.Equal(t, tt.want, cfg.BackupsEnabled())
		})
	}
}

func TestOutputFormatIsValid(t *testing.T) {
	t.Parallel()

	for _, f := range []config.OutputFormat{config.FormatDiff, config.FormatText, config.FormatJSON, config.FormatSummary} {
		assert.True(t, f.IsValid(), f)
	}
	assert.False(t, config.OutputFormat("sarif").IsValid())
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	data, err := config.GenerateTemplate(config.TemplateOptions{Format: "yaml"})
	require.NoError(t, err)
	cfg, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Style, cfg.Style)
	assert.Equal(t, config.NewConfig().Backups, cfg.Backups)

	data, err = config.GenerateTemplate(config.TemplateOptions{Format: "json"})
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "style")

	// JSON is valid YAML.
	cfg, err = config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Style.IndentWidth)

	_, err = config.GenerateTemplate(config.TemplateOptions{Format: "toml"})
	require.Error(t, err)
}
