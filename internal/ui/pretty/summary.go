package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/runner"
)

const summaryDividerWidth = 40

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "5 edits in 2 files, 2 written, 1 error".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	var parts []string

	if stats.FilesChanged == 0 {
		parts = append(parts, s.Success.Render("No changes")+
			s.Dim.Render(fmt.Sprintf(" (%d %s processed)", stats.FilesProcessed, plural(stats.FilesProcessed, "file", "files"))))
	} else {
		parts = append(parts, fmt.Sprintf("%d %s in %d %s",
			stats.EditsTotal, plural(stats.EditsTotal, "edit", "edits"),
			stats.FilesChanged, plural(stats.FilesChanged, "file", "files")))
	}

	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
	}

	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d %s", stats.FilesErrored, plural(stats.FilesErrored, "error", "errors"))))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.Bold.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	row := func(label string, value int, style func(...string) string) {
		fmt.Fprintf(&builder, "  %-18s %s\n", label+":", style(strconv.Itoa(value)))
	}

	row("Files discovered", stats.FilesDiscovered, s.Bold.Render)
	row("Files processed", stats.FilesProcessed, s.Bold.Render)
	if stats.FilesChanged > 0 {
		row("Files changed", stats.FilesChanged, s.Warning.Render)
	}
	if stats.FilesWritten > 0 {
		row("Files written", stats.FilesWritten, s.Success.Render)
	}
	if stats.FilesErrored > 0 {
		row("Files failed", stats.FilesErrored, s.Error.Render)
	}
	row("Edits", stats.EditsTotal, s.Bold.Render)

	builder.WriteString("\n")
	switch {
	case stats.FilesErrored > 0:
		builder.WriteString(s.Error.Render("Rewrite failed for some files"))
	case stats.FilesChanged > stats.FilesWritten:
		builder.WriteString(s.Warning.Render("Changes pending; rerun with --write to save them"))
	default:
		builder.WriteString(s.Success.Render("Rewrite complete"))
	}
	builder.WriteString("\n")

	return builder.String()
}
