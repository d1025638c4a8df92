package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/fsutil"
)

// ErrNoBackup is returned when restore finds no backup for a file.
var ErrNoBackup = errors.New("no backup found")

func newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <files...>",
		Short: "Restore files from the backups left by apply --write",
		Long: `Copy the backup written next to each file (` + fsutil.BackupSuffix + `) back over the
file and remove the backup. A backup holds the content from before the first
write, so restore undoes every apply --write since then.

Examples:
  astrewrite restore main.cy
  astrewrite restore src/*.cy`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewInteractive()

			var errs []error
			for _, path := range args {
				restored, err := fsutil.RestoreBackup(cmd.Context(), path)
				switch {
				case err != nil:
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
				case !restored:
					errs = append(errs, fmt.Errorf("%s: %w", path, ErrNoBackup))
				default:
					logger.Info("restored", logging.FieldPath, path)
				}
			}
			return errors.Join(errs...)
		},
	}

	return cmd
}
