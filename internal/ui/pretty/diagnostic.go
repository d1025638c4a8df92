package pretty

import (
	"fmt"
	"strings"
)

// FormatFileError formats a file that could not be rewritten. Multi-line
// errors, such as the joined per-operation errors of a script, are put on
// indented lines of their own.
func (s *Styles) FormatFileError(path string, err error) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s: %s", s.FilePath.Render(path), s.Error.Render("error"))

	var msg string
	if err != nil {
		msg = err.Error()
	}
	lines := strings.Split(msg, "\n")
	if len(lines) == 1 {
		fmt.Fprintf(&builder, ": %s\n", msg)
		return builder.String()
	}

	builder.WriteString("\n")
	for _, line := range lines {
		fmt.Fprintf(&builder, "  %s\n", line)
	}
	return builder.String()
}
