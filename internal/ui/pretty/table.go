package pretty

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/astrewrite/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, LANG, EDITS, STATUS
	minFileWidth     = 20
	minLangWidth     = 8
	minEditsWidth    = 5
	minStatusWidth   = 12
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// Status is the state of a file after a run.
type Status string

// File statuses, in the order the legend lists them.
const (
	StatusUnchanged Status = "unchanged"
	StatusChanged   Status = "changed"
	StatusWritten   Status = "written"
	StatusError     Status = "error"
)

// StatusOf classifies a file outcome.
func StatusOf(file runner.FileOutcome) Status {
	switch {
	case file.Error != nil:
		return StatusError
	case file.Result == nil || !file.Result.Changed():
		return StatusUnchanged
	case file.Result.Written:
		return StatusWritten
	default:
		return StatusChanged
	}
}

// TableRow represents a single row in the file table.
type TableRow struct {
	File     string
	Language string
	Edits    int
	Status   Status
	Detail   string
}

// TableFormatter formats run results as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
	workingDir   string
}

// NewTableFormatter creates a new table formatter. File paths are shown
// relative to workingDir when it is set.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int, workingDir string) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
		workingDir:   workingDir,
	}
}

// Rows converts the outcomes of a run into table rows.
func (t *TableFormatter) Rows(result *runner.Result) []TableRow {
	if result == nil {
		return nil
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		row := TableRow{
			File:   t.displayPath(file.Path),
			Status: StatusOf(file),
		}
		if file.Error != nil {
			row.Detail = file.Error.Error()
		}
		if file.Result != nil {
			row.Language = file.Result.Language
			row.Edits = len(file.Result.Edits)
			if file.Result.BackupPath != "" {
				row.Detail = "backup " + t.displayPath(file.Result.BackupPath)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	rows := t.Rows(result)
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")
	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

// FormatTracked formats the tracked ranges of one file, ordered by offset.
// Positions are 1-based line:column in the rewritten output.
func (t *TableFormatter) FormatTracked(file runner.FileOutcome) string {
	if file.Result == nil || len(file.Result.Tracked) == 0 {
		return ""
	}

	names := make([]string, 0, len(file.Result.Tracked))
	nameWidth := 0
	for name := range file.Result.Tracked {
		names = append(names, name)
		nameWidth = max(nameWidth, len(name))
	}
	slices.SortFunc(names, func(a, b string) int {
		sa, sb := file.Result.Tracked[a], file.Result.Tracked[b]
		if sa.Offset != sb.Offset {
			return sa.Offset - sb.Offset
		}
		return strings.Compare(a, b)
	})

	var builder strings.Builder
	builder.WriteString(t.styles.FilePath.Render(t.displayPath(file.Path)))
	builder.WriteString("\n")
	for _, name := range names {
		span := file.Result.Tracked[name]
		line, col := position(file.Result.Output, span.Offset)
		fmt.Fprintf(&builder, "  %s  %s  %s\n",
			t.styles.Tracked.Render(fmt.Sprintf("%-*s", nameWidth, name)),
			t.styles.Location.Render(fmt.Sprintf("%d:%d", line, col)),
			t.styles.Dim.Render(span.String()),
		)
	}
	return builder.String()
}

func position(content []byte, offset int) (int, int) {
	offset = min(offset, len(content))
	before := content[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := offset - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return line, col
}

func (t *TableFormatter) displayPath(path string) string {
	if t.workingDir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(t.workingDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

type columnWidths struct {
	file   int
	lang   int
	edits  int
	status int
}

func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		file:   minFileWidth,
		lang:   minLangWidth,
		edits:  minEditsWidth,
		status: minStatusWidth,
	}

	for _, row := range rows {
		widths.file = max(widths.file, len(row.File))
		widths.lang = max(widths.lang, len(row.Language))
		widths.edits = max(widths.edits, len(strconv.Itoa(row.Edits)))
		widths.status = max(widths.status, len(statusText(row)))
	}

	// Shrink the status column first, then the file column.
	totalWidth := t.calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.status = max(minStatusWidth, widths.status-excess)

		totalWidth = t.calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.file = max(minFileWidth, widths.file-excess)
		}
	}

	return widths
}

func (t *TableFormatter) calculateTotalWidth(widths columnWidths) int {
	return widths.file + widths.lang + widths.edits + widths.status + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %*s  %-*s ",
		widths.file, "FILE",
		widths.lang, "LANG",
		widths.edits, "EDITS",
		widths.status, "STATUS",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	content := fmt.Sprintf(" %-*s  %-*s  %*d  %-*s",
		widths.file, truncateFilePath(row.File, widths.file),
		widths.lang, truncateString(row.Language, widths.lang),
		widths.edits, row.Edits,
		widths.status, truncateString(statusText(row), widths.status),
	)
	return t.rowStyle(row.Status).Render(content)
}

func statusText(row TableRow) string {
	if row.Detail == "" {
		return string(row.Status)
	}
	return string(row.Status) + ": " + row.Detail
}

func (t *TableFormatter) rowStyle(status Status) lipgloss.Style {
	switch status {
	case StatusError:
		return t.styles.TableErrorRow
	case StatusChanged:
		return t.styles.TableChanged
	case StatusWritten:
		return t.styles.TableWritten
	default:
		return lipgloss.NewStyle()
	}
}

func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: changed = pending | written = saved | error = not rewritten")
	}

	return t.styles.TableLegend.Render(fmt.Sprintf(" Legend: %s = pending  %s = saved  %s = not rewritten",
		t.styles.TableChanged.Render(string(StatusChanged)),
		t.styles.TableWritten.Render(string(StatusWritten)),
		t.styles.TableErrorRow.Render(string(StatusError)),
	))
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath keeps the end of a path, which carries the file name.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
