package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astrewrite/internal/configloader"
	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/reporter"
	"github.com/yaklabco/astrewrite/pkg/runner"
	"github.com/yaklabco/astrewrite/pkg/script"
)

type applyFlags struct {
	format       string
	ignore       []string
	extensions   []string
	followLinks  bool
	jobs         int
	check        bool
	verify       bool
	compact      bool
	tracked      bool
	contextLines int
}

func newApplyCommand() *cobra.Command {
	var cfg config.Config
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <script> [paths...]",
		Short: "Apply an edit script to source files",
		Long:  applyLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], args[1:], &cfg, flags)
		},
	}

	addApplyFlags(cmd, &cfg, flags)

	return cmd
}

const applyLongDescription = `Apply an edit script to every matching source file.

Without paths, all files with a known extension below the current directory
are rewritten. Named files are always processed, whatever their extension.
Nothing is written unless --write is given; by default the changes are shown
as a unified diff.

Examples:
  astrewrite apply edits.yml                    # Diff for the current directory
  astrewrite apply edits.yml src/               # Diff for one directory
  astrewrite apply edits.yml main.cy --write    # Rewrite a file in place
  astrewrite apply edits.yml --format text      # Print the rewritten content
  astrewrite apply edits.yml --format json      # Edits and tracked ranges as JSON
  astrewrite apply edits.yml --check            # Exit 2 if anything would change`

func runApply(cmd *cobra.Command, scriptPath string, paths []string, cfg *config.Config, flags *applyFlags) error {
	logger := logging.Default()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cmd.Flags().Changed("format") {
		cfg.Output = config.OutputFormat(flags.format)
	}
	cfg.Ignore = flags.ignore

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	finalCfg := loadResult.Config

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		"language", finalCfg.Language,
		"write", finalCfg.Write,
		"indent_width", finalCfg.Style.IndentWidth,
		"backups", finalCfg.BackupsEnabled(),
	)

	edits, err := script.Load(scriptPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	logger.Debug("edit script loaded", logging.FieldScript, scriptPath, "ops", len(edits.Ops))

	format, err := reporter.ParseFormat(string(finalCfg.Output))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	result, err := runner.Run(logging.WithLogger(ctx, logger), runner.Options{
		Paths:          paths,
		WorkingDir:     workDir,
		Extensions:     normalizeExtensions(flags.extensions),
		ExcludeGlobs:   finalCfg.Ignore,
		FollowSymlinks: flags.followLinks,
		Jobs:           flags.jobs,
		Verify:         flags.verify,
		Config:         finalCfg,
		Script:         edits,
	})
	if err != nil {
		return fmt.Errorf("rewrite run failed: %w", err)
	}

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:       cmd.OutOrStdout(),
		ErrorWriter:  cmd.ErrOrStderr(),
		Format:       format,
		Color:        colorMode,
		ShowSummary:  true,
		ShowTracked:  flags.tracked,
		Compact:      flags.compact,
		ContextLines: flags.contextLines,
		WorkingDir:   workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	switch ExitCodeFromResult(result, flags.check) {
	case ExitRewriteErrors:
		return ErrRewriteFailed
	case ExitChangesPending:
		return ErrChangesPending
	default:
		return nil
	}
}

func addApplyFlags(cmd *cobra.Command, cfg *config.Config, flags *applyFlags) {
	cmd.Flags().BoolVarP(&cfg.Write, "write", "w", false, "write rewritten content back to the files")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "do not keep a backup of written files")
	cmd.Flags().StringVar(&cfg.Language, "language", "", "force a language instead of detecting it: curly, markdown")
	cmd.Flags().StringVar(&flags.format, "format", "diff", "output format: diff, text, json, summary")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to ignore")
	cmd.Flags().StringSliceVar(&flags.extensions, "ext", nil, "file extensions to include when walking directories")
	cmd.Flags().BoolVar(&flags.followLinks, "follow-symlinks", false, "descend into symlinked directories")
	cmd.Flags().BoolVar(&flags.check, "check", false, "exit with status 2 if any file would change")
	cmd.Flags().BoolVar(&flags.verify, "verify", true, "re-parse rewritten content before accepting it")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact JSON output")
	cmd.Flags().BoolVar(&flags.tracked, "tracked", false, "list tracked ranges in summary output")
	cmd.Flags().IntVar(&flags.contextLines, "context", reporter.DefaultContextLines, "lines of diff context")

	cmd.Flags().IntVar(&cfg.Style.IndentWidth, "indent-width", 0, "columns per indentation level of generated code")
	cmd.Flags().IntVar(&cfg.Style.TabWidth, "tab-width", 0, "columns a tab advances to")
	cmd.Flags().BoolVar(&cfg.Style.UseTabs, "use-tabs", false, "indent generated code with tabs")
	cmd.Flags().StringVar(&cfg.Style.BraceStyle, "brace-style", "", "brace placement of generated code: same_line, next_line")
}

// normalizeExtensions accepts "cy", ".cy" and ".CY" alike.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
