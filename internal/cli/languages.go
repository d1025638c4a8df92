package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/lang"
	"github.com/yaklabco/astrewrite/pkg/langdetect"
)

// languageInfo represents a language binding in JSON output.
type languageInfo struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	Kinds      int      `json:"kinds"`
}

func newLanguagesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Long: `List the language bindings astrewrite can parse and rewrite, with the
file extensions that select each one.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := languageInfos()
			if err != nil {
				return err
			}

			if format == formatJSON {
				return outputLanguagesJSON(cmd.OutOrStdout(), infos)
			}

			logger := logging.NewInteractive()
			logger.Info("supported languages")
			for _, info := range infos {
				logger.Info(info.Name,
					"extensions", info.Extensions,
					"kinds", info.Kinds,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json")

	return cmd
}

func languageInfos() ([]languageInfo, error) {
	names := lang.Names()
	infos := make([]languageInfo, 0, len(names))
	for _, name := range names {
		binding, err := lang.Lookup(name)
		if err != nil {
			return nil, err
		}

		var exts []string
		for _, ext := range langdetect.Extensions() {
			if langdetect.Detect("file"+ext, nil) == name {
				exts = append(exts, ext)
			}
		}

		infos = append(infos, languageInfo{
			Name:       name,
			Extensions: exts,
			Kinds:      len(binding.Grammar.Kinds),
		})
	}
	return infos, nil
}

func outputLanguagesJSON(w io.Writer, infos []languageInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("encoding languages: %w", err)
	}
	return nil
}
