// Package indent rewrites the leading whitespace of text blocks.
//
// It knows nothing about the syntax of the text it shifts: every physical
// line is treated as leading whitespace followed by opaque content.
package indent

import "strings"

// Style describes how one indentation unit is measured and emitted.
type Style struct {
	// Width is the number of columns per indentation level.
	Width int

	// TabWidth is the column width of a tab when measuring existing whitespace.
	TabWidth int

	// UseTabs emits tabs (followed by spaces for the remainder) instead of spaces only.
	UseTabs bool
}

// Spaces returns a space-only style with the given unit width.
func Spaces(width int) Style {
	return Style{Width: width, TabWidth: width}
}

// Tabs returns a tab-indented style.
func Tabs(tabWidth int) Style {
	return Style{Width: tabWidth, TabWidth: tabWidth, UseTabs: true}
}

func (s Style) tabWidth() int {
	if s.TabWidth > 0 {
		return s.TabWidth
	}
	if s.Width > 0 {
		return s.Width
	}
	return 1
}

// Unit returns the text of one indentation level.
func (s Style) Unit() string {
	return s.Emit(s.Width)
}

// String returns the indentation text for level.
func (s Style) String(level int) string {
	if level <= 0 {
		return ""
	}
	return s.Emit(level * s.Width)
}

// Columns measures the visual width of a run of spaces and tabs.
func (s Style) Columns(ws string) int {
	tw := s.tabWidth()
	cols := 0
	for i := range len(ws) {
		switch ws[i] {
		case '\t':
			cols += tw - cols%tw
		case ' ':
			cols++
		default:
			return cols
		}
	}
	return cols
}

// Emit produces whitespace spanning cols columns.
func (s Style) Emit(cols int) string {
	if cols <= 0 {
		return ""
	}
	if !s.UseTabs {
		return strings.Repeat(" ", cols)
	}
	tw := s.tabWidth()
	return strings.Repeat("\t", cols/tw) + strings.Repeat(" ", cols%tw)
}

// Level returns how many whole units fit in ws.
func (s Style) Level(ws string) int {
	if s.Width <= 0 {
		return 0
	}
	return s.Columns(ws) / s.Width
}

// Descriptor is an indentation style at a given level.
type Descriptor struct {
	Style Style
	Level int

	// Extra is a number of columns beyond Level whole units, for lines
	// whose indentation is not a multiple of the unit width.
	Extra int
}

func (d Descriptor) base() int {
	return d.Level*d.Style.Width + d.Extra
}

// Measure describes the indentation ws in terms of style.
func Measure(style Style, ws string) Descriptor {
	cols := style.Columns(ws)
	if style.Width <= 0 {
		return Descriptor{Style: style, Extra: cols}
	}
	return Descriptor{Style: style, Level: cols / style.Width, Extra: cols % style.Width}
}

// Leading returns the run of spaces and tabs at the start of line.
func Leading(line string) string {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[:i]
}

// Option configures Reindent.
type Option func(*options)

type options struct {
	skipFirst bool
}

// SkipFirstLine leaves the first line untouched, for blocks that are
// inserted mid-line after existing indentation.
func SkipFirstLine() Option {
	return func(o *options) { o.skipFirst = true }
}

// Reindent shifts every line of text from one indentation descriptor to
// another. Each line's leading whitespace is measured with from's tab width,
// moved by the difference between the two levels, and re-emitted using to's
// tab policy. Blank lines are left untouched.
func Reindent(text string, from, to Descriptor, opts ...Option) string {
	out, _ := ReindentPositions(text, from, to, nil, opts...)
	return out
}

// ReindentPositions is Reindent that also maps byte offsets in text to the
// corresponding offsets in the result. The input slice is not modified.
func ReindentPositions(text string, from, to Descriptor, positions []int, opts ...Option) (string, []int) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	mapped := make([]int, len(positions))
	copy(mapped, positions)

	if text == "" || from == to {
		return text, mapped
	}

	var b strings.Builder
	b.Grow(len(text))

	lineStart := 0
	first := true
	for lineStart <= len(text) {
		end := strings.IndexByte(text[lineStart:], '\n')
		lineEnd := len(text)
		if end >= 0 {
			lineEnd = lineStart + end + 1
		}
		line := text[lineStart:lineEnd]

		ws := Leading(line)
		replacement := ws
		if (!first || !o.skipFirst) && !isBlank(line) {
			cols := from.Style.Columns(ws) - from.base() + to.base()
			replacement = to.Style.Emit(cols)
		}

		outStart := b.Len()
		b.WriteString(replacement)
		b.WriteString(line[len(ws):])

		for i, pos := range positions {
			if pos < lineStart || pos >= lineEnd {
				continue
			}
			rel := pos - lineStart
			if rel < len(ws) {
				mapped[i] = outStart + min(rel, len(replacement))
			} else {
				mapped[i] = outStart + len(replacement) + rel - len(ws)
			}
		}

		first = false
		if end < 0 {
			break
		}
		lineStart = lineEnd
	}

	for i, pos := range positions {
		if pos >= len(text) {
			mapped[i] = b.Len() + pos - len(text)
		}
	}

	return b.String(), mapped
}

func isBlank(line string) bool {
	for i := range len(line) {
		switch line[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
