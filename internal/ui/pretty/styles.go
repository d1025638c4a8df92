// Package pretty provides Lipgloss-based styled output utilities.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains all styled renderers for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style

	FilePath lipgloss.Style
	Location lipgloss.Style
	Tracked  lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	TableHeader    lipgloss.Style
	TableChanged   lipgloss.Style
	TableWritten   lipgloss.Style
	TableErrorRow  lipgloss.Style
	TableLegend    lipgloss.Style
	TableSeparator lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI 16-color palette indexes.
const (
	colorGray    = "8"
	colorRed     = "9"
	colorGreen   = "10"
	colorYellow  = "11"
	colorMagenta = "13"
	colorCyan    = "14"
	colorWhite   = "7"
)

// NewStyles creates a new Styles. With color disabled every style renders
// its input unchanged.
func NewStyles(colorEnabled bool) *Styles {
	fg := func(color string) lipgloss.Style {
		if !colorEnabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	bold := func(s lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return s
		}
		return s.Bold(true)
	}

	return &Styles{
		Error:   bold(fg(colorRed)),
		Warning: bold(fg(colorYellow)),
		Success: bold(fg(colorGreen)),

		FilePath: bold(lipgloss.NewStyle()),
		Location: fg(colorGray),
		Tracked:  fg(colorMagenta),

		DiffHeader:  bold(lipgloss.NewStyle()),
		DiffHunk:    fg(colorCyan),
		DiffAdd:     fg(colorGreen),
		DiffRemove:  fg(colorRed),
		DiffContext: fg(colorGray),

		TableHeader:    bold(fg(colorWhite)),
		TableChanged:   fg(colorYellow),
		TableWritten:   fg(colorGreen),
		TableErrorRow:  fg(colorRed),
		TableLegend:    fg(colorGray).Italic(colorEnabled),
		TableSeparator: fg(colorGray),

		Dim:  fg(colorGray),
		Bold: bold(lipgloss.NewStyle()),
	}
}

// IsColorEnabled reports whether output to writer should be colored.
// Mode is "always", "never" or "auto"; any other value behaves like auto,
// which colors only a terminal and only when NO_COLOR is unset.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
