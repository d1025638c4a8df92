package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astrewrite/internal/configloader"
	"github.com/yaklabco/astrewrite/pkg/config"
)

func newConfigCommand() *cobra.Command {
	var listEnv bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Resolve the configuration the way apply does (defaults, system, user and
project files, --config, ASTREWRITE_* variables) and print the result as YAML.
The header lists the files that were loaded.

Examples:
  astrewrite config               Effective configuration
  astrewrite config --env         Supported environment variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if listEnv {
				vars := configloader.ListEnvVars()
				width := 0
				for name := range vars {
					width = max(width, len(name))
				}
				for _, name := range slices.Sorted(maps.Keys(vars)) {
					fmt.Fprintf(out, "%-*s  %s\n", width, name, vars[name])
				}
				return nil
			}

			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("get config flag: %w", err)
			}
			workDir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
				WorkingDir:   workDir,
				ExplicitPath: configPath,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfig, err)
			}

			data, err := loadResult.Config.ToYAMLWithHeader(configHeader(loadResult.LoadedFrom))
			if err != nil {
				return fmt.Errorf("render configuration: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&listEnv, "env", false, "list supported environment variables")

	return cmd
}

func configHeader(loadedFrom []string) string {
	var b strings.Builder
	b.WriteString(config.DefaultTemplateHeader())
	if len(loadedFrom) == 0 {
		b.WriteString("\n# Loaded from: defaults only")
		return b.String()
	}
	b.WriteString("\n# Loaded from:")
	for _, path := range loadedFrom {
		b.WriteString("\n#   ")
		b.WriteString(path)
	}
	return b.String()
}
